package auth

// LoginData is a View Model (DTO) used specifically for the login template.
// It carries a previously submitted email and the page to return to after sign-in.
type LoginData struct {
	Email string
	Next  string
}
