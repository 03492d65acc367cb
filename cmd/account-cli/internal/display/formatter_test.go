package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/view/dto/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() account.Data {
	return account.New(&domain.User{
		Username:  "ada",
		FirstName: "Ada",
		Email:     "ada@example.com",
		City:      "London",
		Verified:  domain.VerifiedNo,
		Avatar:    domain.AvatarFromURL("/api/account/avatar/u1/a.png"),
	}, false, domain.ProfileUpdate{}, "")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "First Name", Label(domain.FieldFirstName))
	assert.Equal(t, "Username", Label(domain.FieldUsername))
	assert.Equal(t, "Email", Label("email"))
}

func TestProfile_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, sampleData(), FormatTable))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ada  [Unverified]"))
	assert.Contains(t, out, "/api/account/avatar/u1/a.png")
	assert.Contains(t, out, "First Name")
	assert.Contains(t, out, "State / Province")
	assert.Regexp(t, `Last Name\s+-`, out)
}

func TestProfile_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, sampleData(), FormatJSON))

	var got ProfileDisplay
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ada", got.DisplayName)
	assert.True(t, got.Unverified)
	assert.Equal(t, "London", got.City)
	assert.Empty(t, got.LastName)
}

func TestProfile_NotLoadedAndUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, account.Loading, FormatTable))
	assert.Equal(t, "Loading account info...\n", buf.String())

	assert.Error(t, Profile(&buf, sampleData(), "yaml"))
}

func TestAvatarText(t *testing.T) {
	assert.Equal(t, "-", avatarText(""))
	assert.Equal(t, "(embedded image)", avatarText("data:image/png;base64,AAAA"))
	long := "/api/account/avatar/" + strings.Repeat("x", 80)
	assert.Len(t, avatarText(long), 60)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "abc", truncateString("abcdef", 3))
}
