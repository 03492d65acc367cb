package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/nfrund/accountdash/internal/view"
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base wraps page content in the document shell with the flash messages on top.
func Base(title string, flashes view.FlashData, content g.Node) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    CalculateTitle(title),
		Language: "en",
		Head: []g.Node{
			h.Link(h.Rel("icon"), h.Type("image/svg+xml"), h.Href("/static/favicon.svg")),
			h.Script(h.Src("https://cdn.tailwindcss.com")),
			h.Link(h.Rel("stylesheet"), h.Href("/static/account.css")),
			h.Script(h.Src(htmxSrc), h.Defer()),
		},
		Body: []g.Node{
			h.Class("bg-gray-100 min-h-screen"),
			h.Main(
				h.Class("container mx-auto max-w-4xl p-6"),
				view.AdaptTemplToGomponent(Flashes(flashes)),
				content,
			),
		},
	})
}

// Flashes renders the one-time success and error banners.
func Flashes(f view.FlashData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if f.Empty() {
			return nil
		}
		if _, err := io.WriteString(w, `<div id="flashes" class="space-y-2 mb-4">`); err != nil {
			return err
		}
		for _, msg := range f.Success {
			if err := writeBanner(w, "bg-green-100 text-green-800", msg); err != nil {
				return err
			}
		}
		for _, msg := range f.Error {
			if err := writeBanner(w, "bg-red-100 text-red-800", msg); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func writeBanner(w io.Writer, classes, msg string) error {
	_, err := io.WriteString(w, `<div role="alert" class="rounded-lg px-4 py-3 `+classes+`">`+templ.EscapeString(msg)+`</div>`)
	return err
}
