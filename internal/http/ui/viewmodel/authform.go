package viewmodel

// AuthForm is the sign-in/sign-up form as rendered.
// Password fields are never echoed back.
type AuthForm struct {
	Mode        string
	Title       string
	SubmitLabel string
	ToggleMode  string
	ToggleLabel string
	Email       string
	FirstName   string
	LastName    string
	Errors      map[string]string
	Message     string

	CaptchaRequired bool
	CaptchaSiteKey  string
}

// IsSignUp reports whether the form collects registration fields.
func (f AuthForm) IsSignUp() bool { return f.Mode == "signup" }

// Error returns the message for a field, or "".
func (f AuthForm) Error(field string) string { return f.Errors[field] }
