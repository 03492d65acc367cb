package pages

import (
	"github.com/nfrund/accountdash/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Login renders the sign-in form.
func Login(data auth.LoginData) g.Node {
	return h.Div(
		h.Class("max-w-md mx-auto bg-white shadow rounded-xl p-8"),
		h.H1(h.Class("text-2xl font-bold mb-6"), g.Text("Sign in")),
		h.Form(
			h.Method("post"), h.Action("/auth/login"), h.Class("space-y-4"),
			g.If(data.Next != "", h.Input(h.Type("hidden"), h.Name("next"), h.Value(data.Next))),
			labeledInput("email", "Email", "email", data.Email, h.Required(), h.AutoComplete("email")),
			labeledInput("password", "Password", "password", "", h.Required(), h.AutoComplete("current-password")),
			h.Button(
				h.Type("submit"),
				h.Class("w-full bg-indigo-600 text-white rounded-lg py-2 font-semibold hover:bg-indigo-700"),
				g.Text("Sign in"),
			),
		),
	)
}

func labeledInput(id, label, typ, value string, extra ...g.Node) g.Node {
	return h.Div(
		h.Label(h.For(id), h.Class("block text-sm font-medium text-gray-700 mb-1"), g.Text(label)),
		h.Input(append([]g.Node{
			h.ID(id), h.Name(id), h.Type(typ), h.Value(value),
			h.Class("w-full rounded-lg border border-gray-300 px-3 py-2 disabled:bg-gray-100"),
		}, extra...)...),
	)
}
