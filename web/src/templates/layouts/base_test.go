package layouts

import (
	"bytes"
	"context"
	"testing"

	"github.com/nfrund/accountdash/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func TestBase(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Base("Account", view.FlashData{}, g.Text("body")).Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "<title>Account - Account Dashboard</title>")
	assert.Contains(t, out, htmxSrc)
	assert.Contains(t, out, "/static/favicon.svg")
	assert.NotContains(t, out, `id="flashes"`)
}

func TestFlashes(t *testing.T) {
	var buf bytes.Buffer
	flashes := view.FlashData{Success: []string{"Saved"}, Error: []string{"<b>bad</b>"}}
	require.NoError(t, Flashes(flashes).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `id="flashes"`)
	assert.Contains(t, out, "bg-green-100 text-green-800")
	assert.Contains(t, out, ">Saved</div>")
	assert.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, out, "<b>bad</b>")
}
