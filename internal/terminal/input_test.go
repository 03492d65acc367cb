package terminal

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadLine(bufio.NewReader(strings.NewReader("  ada@example.com \nrest\n")), "Email: ", &out)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got)
	assert.Equal(t, "Email: ", out.String())

	got, err = ReadLine(bufio.NewReader(strings.NewReader("no newline")), "", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)

	_, err = ReadLine(bufio.NewReader(strings.NewReader("")), "", io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

func stubTerminal(t *testing.T, tty bool, pw []byte, err error) {
	t.Helper()
	origRead, origIs := readPassword, isTerminal
	readPassword = func(int) ([]byte, error) { return pw, err }
	isTerminal = func(int) bool { return tty }
	t.Cleanup(func() { readPassword, isTerminal = origRead, origIs })
}

func TestReadPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, []byte("s3cret-password"), nil)

	var out bytes.Buffer
	got, err := ReadPassword(os.Stdin, "Password: ", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret-password", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestReadPassword_TerminalError(t *testing.T) {
	stubTerminal(t, true, nil, errors.New("tty gone"))

	_, err := ReadPassword(os.Stdin, "Password: ", io.Discard)
	assert.ErrorContains(t, err, "tty gone")
}

func TestReadPassword_Piped(t *testing.T) {
	stubTerminal(t, false, nil, nil)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	_, err = w.WriteString("piped-password\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := ReadPassword(r, "Password: ", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "piped-password", got)
}
