package pages

import (
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/view/dto/account"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

const (
	cardsID       = "account-cards"
	cardsPath     = "/dashboard/account/card"
	profilePath   = "/dashboard/account/profile"
	avatarPath    = "/dashboard/account/avatar"
	cardClass     = "bg-white shadow rounded-xl p-6"
	headingClass  = "text-lg font-semibold mb-4"
	buttonClass   = "rounded-lg px-4 py-2 font-semibold"
	loadingText   = "Loading account info..."
	acceptedTypes = "image/png,image/jpeg"
)

var profileLabels = map[string]string{
	domain.FieldUsername:  "Username",
	domain.FieldFirstName: "First Name",
	domain.FieldLastName:  "Last Name",
	domain.FieldEmail:     "Email",
}

// Account renders the page shell. The cards are fetched once the page loads.
func Account() g.Node {
	return h.Div(
		h.ID(cardsID),
		h.Class("space-y-6"),
		hx.Get(cardsPath),
		hx.Trigger("load"),
		hx.Swap("outerHTML"),
		h.P(h.Class("text-gray-500"), g.Text(loadingText)),
	)
}

// AccountCards renders the profile, password and address cards. avatarError is
// shown next to the upload control when the last upload failed.
func AccountCards(d account.Data, avatarError string) g.Node {
	if !d.Loaded {
		return Account()
	}
	return h.Div(
		h.ID(cardsID),
		h.Class("space-y-6"),
		profileCard(d, avatarError),
		passwordCard(),
		addressCard(d),
	)
}

func profileCard(d account.Data, avatarError string) g.Node {
	return h.Section(
		h.Class(cardClass),
		h.Div(
			h.Class("flex items-center gap-4 mb-6"),
			avatarImage(d),
			h.Div(
				h.H2(h.Class("text-xl font-bold"), g.Text(d.DisplayName)),
			),
		),
		avatarForm(avatarError),
		g.If(d.Editing, profileForm(d)),
		g.If(!d.Editing, profileDetails(d)),
	)
}

func avatarImage(d account.Data) g.Node {
	if d.AvatarSrc == "" {
		return h.Div(h.Class("w-20 h-20 rounded-full bg-gray-200"), h.Aria("label", "No avatar"))
	}
	return h.Img(h.Src(d.AvatarSrc), h.Alt("Avatar"), h.Class("w-20 h-20 rounded-full object-cover"))
}

// withEmailBadge puts the unverified badge above the email field.
func withEmailBadge(d account.Data, name string, field g.Node) g.Node {
	if name != domain.FieldEmail || !d.Unverified {
		return field
	}
	return h.Div(unverifiedBadge(), field)
}

func unverifiedBadge() g.Node {
	return h.Div(
		h.Class("flex items-center gap-2 mb-2"),
		h.Span(h.Class("text-xs font-semibold bg-yellow-100 text-yellow-800 rounded px-2 py-0.5"), g.Text("Unverified")),
		h.A(h.Href("#"), h.Class("text-sm text-indigo-600 underline"), g.Text("Verify Now")),
	)
}

func avatarForm(avatarError string) g.Node {
	return h.Form(
		h.Class("mb-6"),
		hx.Post(avatarPath),
		hx.Encoding("multipart/form-data"),
		hx.Target("#"+cardsID),
		hx.Swap("outerHTML"),
		hx.Trigger("change"),
		h.Label(h.For("avatar"), h.Class("block text-sm font-medium text-gray-700 mb-1"), g.Text("Change avatar")),
		h.Input(h.ID("avatar"), h.Name("avatar"), h.Type("file"), h.Accept(acceptedTypes)),
		g.If(avatarError != "", h.P(h.Role("alert"), h.Class("text-sm text-red-600 mt-2"), g.Text(avatarError))),
	)
}

func profileDetails(d account.Data) g.Node {
	rows := make([]g.Node, 0, len(domain.EditableFields))
	for _, name := range domain.EditableFields {
		value, _ := d.Form.Field(name)
		rows = append(rows, withEmailBadge(d, name, detailRow(profileLabels[name], value)))
	}
	return h.Div(
		h.Dl(append([]g.Node{h.Class("grid grid-cols-2 gap-4 mb-4")}, rows...)...),
		h.Button(
			h.Type("button"),
			h.Class(buttonClass+" bg-indigo-600 text-white"),
			hx.Get(cardsPath+"?edit=1"),
			hx.Target("#"+cardsID),
			hx.Swap("outerHTML"),
			g.Text("Edit Profile"),
		),
	)
}

func profileForm(d account.Data) g.Node {
	inputs := make([]g.Node, 0, len(domain.EditableFields))
	for _, name := range domain.EditableFields {
		value, _ := d.Form.Field(name)
		typ := "text"
		if name == domain.FieldEmail {
			typ = "email"
		}
		inputs = append(inputs, withEmailBadge(d, name, labeledInput(name, profileLabels[name], typ, value)))
	}
	return h.Form(
		hx.Post(profilePath),
		hx.Target("#"+cardsID),
		hx.Swap("outerHTML"),
		h.Class("space-y-4"),
		h.Div(append([]g.Node{h.Class("grid grid-cols-2 gap-4")}, inputs...)...),
		g.If(d.ProfileError != "", h.P(h.Role("alert"), h.Class("text-sm text-red-600"), g.Text(d.ProfileError))),
		h.Div(
			h.Class("flex gap-2"),
			h.Button(h.Type("submit"), h.Class(buttonClass+" bg-indigo-600 text-white"), g.Text("Save")),
			h.Button(
				h.Type("button"),
				h.Class(buttonClass+" bg-gray-200"),
				hx.Get(cardsPath),
				hx.Target("#"+cardsID),
				hx.Swap("outerHTML"),
				g.Text("Cancel"),
			),
		),
	)
}

// passwordCard is display only; changing the password is not supported.
func passwordCard() g.Node {
	return h.Section(
		h.Class(cardClass),
		h.H2(h.Class(headingClass), g.Text("Change Password")),
		h.Div(
			h.Class("space-y-4"),
			labeledInput("current_password", "Current Password", "password", "", h.Disabled()),
			labeledInput("new_password", "New Password", "password", "", h.Disabled()),
			labeledInput("confirm_password", "Confirm New Password", "password", "", h.Disabled()),
			h.Button(h.Type("button"), h.Disabled(), h.Class(buttonClass+" bg-gray-300 text-gray-600 cursor-not-allowed"), g.Text("Update Password")),
		),
	)
}

func addressCard(d account.Data) g.Node {
	return h.Section(
		h.Class(cardClass),
		h.H2(h.Class(headingClass), g.Text("Address")),
		h.Dl(
			h.Class("grid grid-cols-2 gap-4"),
			detailRow("Address", d.Address),
			detailRow("City", d.City),
			detailRow("State / Province", d.State),
			detailRow("ZIP / Postal Code", d.Zip),
			detailRow("Country", d.Country),
		),
	)
}

func detailRow(label, value string) g.Node {
	return h.Div(
		h.Dt(h.Class("text-sm text-gray-500"), g.Text(label)),
		h.Dd(h.Class("font-medium"), g.Text(value)),
	)
}
