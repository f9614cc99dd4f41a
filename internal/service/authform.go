package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/validation"
)

// FormMode selects which auth form is shown and how it is validated.
type FormMode string

const (
	ModeSignIn FormMode = "signin"
	ModeSignUp FormMode = "signup"
)

// ParseFormMode maps a raw mode (query string, form field) to a FormMode. Unknown values mean sign-in.
func ParseFormMode(raw string) FormMode {
	if FormMode(strings.ToLower(strings.TrimSpace(raw))) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

// Schema validates credentials and returns field errors keyed by form field name.
type Schema func(Credentials) map[string]string

// Schema returns the validation strategy owned by the mode.
func (m FormMode) Schema() Schema {
	if m == ModeSignUp {
		return validateSignUp
	}
	return validateSignIn
}

// Toggled returns the other mode.
func (m FormMode) Toggled() FormMode {
	if m == ModeSignUp {
		return ModeSignIn
	}
	return ModeSignUp
}

// Title is the heading shown above the form.
func (m FormMode) Title() string {
	if m == ModeSignUp {
		return "Create an account"
	}
	return "Sign in"
}

const (
	minPasswordLen = 8
	minNameLen     = 3
)

func validateSignIn(c Credentials) map[string]string {
	return validation.New().
		Validate("email", c.Email, validation.Required("Email is required."), validation.Email("Enter a valid email address.")).
		Validate("password", c.Password, validation.Required("Password is required."),
			validation.MinLen(minPasswordLen, "Password must be at least 8 characters.")).
		Errors()
}

func validateSignUp(c Credentials) map[string]string {
	errs := validateSignIn(c)
	more := validation.New().
		Validate("first_name", strings.TrimSpace(c.FirstName), validation.Required("First name is required."),
			validation.MinLen(minNameLen, "First name must be at least 3 characters.")).
		Validate("last_name", strings.TrimSpace(c.LastName), validation.Required("Last name is required."),
			validation.MinLen(minNameLen, "Last name must be at least 3 characters.")).
		Validate("confirm_password", c.ConfirmPassword, validation.Required("Please confirm your password."),
			validation.Equals(c.Password, "Passwords do not match.")).
		Errors()
	for k, v := range more {
		errs[k] = v
	}
	return errs
}

// AuthForm holds the mode and current values of the sign-in/sign-up form.
type AuthForm struct {
	Mode   FormMode
	Values Credentials
	// OnToggle is notified with the new mode after Toggle.
	OnToggle func(FormMode)
}

// Toggle flips the mode. The email survives; every other field is cleared.
func (f *AuthForm) Toggle() {
	f.Mode = f.Mode.Toggled()
	f.Values = Credentials{Email: f.Values.Email}
	if f.OnToggle != nil {
		f.OnToggle(f.Mode)
	}
}

// Validate runs the mode's schema against the current values.
func (f *AuthForm) Validate() map[string]string {
	return f.Mode.Schema()(f.Values)
}

// SubmitInput is one submission of the auth form.
type SubmitInput struct {
	Form         AuthForm
	CaptchaToken string
	RemoteIP     string
}

// SubmitResult tells the caller what to render next.
type SubmitResult struct {
	Target       domainauth.RoutingTarget
	Session      *domainauth.Session
	FieldErrors  map[string]string
	ResetCaptcha bool
	Message      string
}

// AuthFormServiceOptions groups dependencies for AuthFormService.
type AuthFormServiceOptions struct {
	Captcha *CaptchaService // Required
	Auth    *AuthService    // Required
	Logger  *slog.Logger    // Optional
}

// AuthFormService runs the submit sequence: captcha, schema, then the mode's auth call.
// It holds no per-request state.
type AuthFormService struct {
	captcha *CaptchaService
	auth    *AuthService
	logger  *slog.Logger
}

// NewAuthFormService constructs a new AuthFormService.
func NewAuthFormService(opts AuthFormServiceOptions) (*AuthFormService, error) {
	if opts.Captcha == nil {
		return nil, errors.New("captcha service is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	return &AuthFormService{captcha: opts.Captcha, auth: opts.Auth, logger: opts.Logger}, nil
}

func (s *AuthFormService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// CaptchaRequired reports whether the form must carry a captcha token.
func (s *AuthFormService) CaptchaRequired() bool { return !s.captcha.Bypassed() }

// Submit validates and dispatches one form submission. Any error sets ResetCaptcha because
// verification tokens are single-use. There is no retry.
func (s *AuthFormService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	failed := SubmitResult{ResetCaptcha: true}

	if err := s.captcha.Check(ctx, in.CaptchaToken, in.RemoteIP); err != nil {
		return failed, err
	}

	if fieldErrs := in.Form.Validate(); len(fieldErrs) > 0 {
		failed.FieldErrors = fieldErrs
		return failed, apperrors.ValidationFields(fieldErrs)
	}

	switch in.Form.Mode {
	case ModeSignUp:
		if err := s.auth.SignUp(ctx, in.Form.Values); err != nil {
			return failed, err
		}
		s.log().InfoContext(ctx, "account registered")
		return SubmitResult{Target: domainauth.RouteLanding, Message: MsgSignUpSuccess}, nil
	default:
		res, err := s.auth.SignIn(ctx, in.Form.Values)
		if err != nil {
			return failed, err
		}
		return SubmitResult{Target: res.Target, Session: &res.Session}, nil
	}
}
