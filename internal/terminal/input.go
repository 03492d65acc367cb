// Package terminal reads interactive input for the command line tools.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Seams for tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ReadLine prints prompt to w and reads one line from r, trimmed. A final
// line without a newline is still returned.
func ReadLine(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prompts on w and reads a password from in without echo when in
// is a terminal. Piped input is read as a plain line so scripts can sign in.
func ReadPassword(in *os.File, prompt string, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !isTerminal(fd) {
		return ReadLine(bufio.NewReader(in), prompt, w)
	}
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
