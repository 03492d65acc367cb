package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// AdaptTemplToGomponent embeds a templ component in a gomponents tree.
// gomponents does not pass a context down, so the component sees context.Background.
func AdaptTemplToGomponent(component templ.Component) g.Node {
	return AdaptTemplToGomponentContext(context.Background(), component)
}

// AdaptTemplToGomponentContext is AdaptTemplToGomponent with an explicit context,
// for components that read request-scoped values.
func AdaptTemplToGomponentContext(ctx context.Context, component templ.Component) g.Node {
	return g.NodeFunc(func(w io.Writer) error {
		return component.Render(ctx, w)
	})
}

// AdaptGomponentToTempl lets a gomponents node be used wherever a templ.Component is expected.
func AdaptGomponentToTempl(node g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return node.Render(w)
	})
}
