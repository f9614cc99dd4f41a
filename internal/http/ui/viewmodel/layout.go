package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	Name  string
	Email string
	Role  string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsElevated      bool
	User            *User
}
