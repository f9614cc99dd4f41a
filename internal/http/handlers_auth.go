package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/http/ui/viewmodel"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

const appTitle = "Rider Onboarding"

// SessionService defines the session operations used by the auth handlers.
type SessionService interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthFormSubmitter runs one submission of the auth form.
type AuthFormSubmitter interface {
	Submit(ctx context.Context, in service.SubmitInput) (service.SubmitResult, error)
	CaptchaRequired() bool
}

var (
	_ SessionService    = (*service.AuthService)(nil)
	_ AuthFormSubmitter = (*service.AuthFormService)(nil)
)

// AuthHandlers provides HTTP handlers for the sign-in/sign-up page and session lifecycle.
type AuthHandlers struct {
	T              *TemplateRenderer
	Svc            SessionService
	Forms          AuthFormSubmitter
	CaptchaSiteKey string
	CookieDomain   string
	Proxies        ProxyTrust
	IsDev          bool
	Logger         *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) pages() pageRenderer {
	return pageRenderer{T: h.T, IsDev: h.IsDev, Logger: h.logger()}
}

// formState is what a render of the auth form needs besides the form itself.
type formState struct {
	Errors  map[string]string
	Message string
	Status  int
}

// Page serves the landing page. Signed-in users are sent to their routing target.
// GET /?mode=signin|signup.
func (h *AuthHandlers) Page(w http.ResponseWriter, r *http.Request) {
	if session := h.currentSession(w, r); session != nil {
		redirect(w, r, string(session.Target()))
		return
	}
	form := service.AuthForm{Mode: service.ParseFormMode(r.URL.Query().Get("mode"))}
	h.renderForm(w, r, form, formState{})
}

// Toggle flips the form between sign-in and sign-up, keeping only the email.
// POST /auth/toggle.
func (h *AuthHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	form.OnToggle = func(mode service.FormMode) {
		h.logger().DebugContext(r.Context(), "auth form toggled", "mode", mode)
	}
	form.Toggle()

	if IsHTMX(r) {
		SetHXPushURL(w, landingURL(form.Mode))
	}
	h.renderForm(w, r, form, formState{})
}

// Submit handles a sign-in or sign-up submission.
// POST /auth/submit.
func (h *AuthHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)

	res, err := h.Forms.Submit(r.Context(), service.SubmitInput{
		Form:         form,
		CaptchaToken: captchaToken(r),
		RemoteIP:     h.Proxies.ClientIP(r),
	})
	if err != nil {
		h.renderFailure(w, r, form, res, err)
		return
	}

	if res.Session != nil {
		h.setSessionCookie(w, r, *res.Session)
		h.logger().InfoContext(r.Context(), "signed in", "role", res.Session.Role, "target", res.Target)
		redirect(w, r, string(res.Target))
		return
	}

	// Sign-up creates no session: back to the landing page in sign-in mode.
	next := service.AuthForm{Mode: service.ModeSignIn, Values: service.Credentials{Email: form.Values.Email}}
	if IsHTMX(r) {
		HTMX(w).Toast(res.Message, ToastSuccess)
		SetHXPushURL(w, string(domainauth.RouteLanding))
	}
	h.renderForm(w, r, next, formState{Message: res.Message})
}

// renderFailure re-renders the form after a failed submission. Field errors are shown inline;
// anything else raises an error toast. The captcha widget is reset because tokens are single-use.
func (h *AuthHandlers) renderFailure(
	w http.ResponseWriter,
	r *http.Request,
	form service.AuthForm,
	res service.SubmitResult,
	err error,
) {
	view := DescribeError(err)
	if len(res.FieldErrors) > 0 {
		view.FieldErrors = res.FieldErrors
	}
	h.logger().InfoContext(r.Context(), "auth form rejected",
		"mode", form.Mode, "status", view.Status, "fields", len(view.FieldErrors), "error", err)

	state := formState{Errors: view.FieldErrors, Message: view.Message}
	if IsHTMX(r) {
		resp := HTMX(w)
		if res.ResetCaptcha {
			resp.Trigger(EventCaptchaReset, nil)
		}
		if len(view.FieldErrors) == 0 {
			resp.Toast(view.Message, ToastError)
		}
	} else {
		state.Status = view.Status
	}
	h.renderForm(w, r, form, state)
}

// renderForm renders the auth form as a fragment for htmx, or inside the landing page.
func (h *AuthHandlers) renderForm(w http.ResponseWriter, r *http.Request, form service.AuthForm, state formState) {
	vm := h.formView(form, state)
	if WantsPartial(r) {
		h.pages().Fragment(w, r, fragmentAuthForm, map[string]any{"Form": vm, "CSRFToken": GetCSRFToken(r)})
		return
	}
	data := NewTemplateData(r, PageMeta{
		Title:       form.Mode.Title() + " | " + appTitle,
		PageTitle:   appTitle,
		CurrentPage: PageAuth,
	}).With("Form", vm).Build()
	h.pages().Page(w, r, state.Status, data)
}

func (h *AuthHandlers) formView(form service.AuthForm, state formState) viewmodel.AuthForm {
	vm := viewmodel.AuthForm{
		Mode:            string(form.Mode),
		Title:           form.Mode.Title(),
		SubmitLabel:     "Sign In",
		ToggleMode:      string(form.Mode.Toggled()),
		ToggleLabel:     "Don't have an account? Sign up",
		Email:           form.Values.Email,
		FirstName:       form.Values.FirstName,
		LastName:        form.Values.LastName,
		Errors:          state.Errors,
		Message:         state.Message,
		CaptchaRequired: h.Forms != nil && h.Forms.CaptchaRequired(),
		CaptchaSiteKey:  h.CaptchaSiteKey,
	}
	if form.Mode == service.ModeSignUp {
		vm.SubmitLabel = "Create Account"
		vm.ToggleLabel = "Already have an account? Sign in"
	}
	return vm
}

// Logout deletes the session and its onboarding progress, then shows the signed-out page.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout cleanup failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, SessionCookieName)
	redirect(w, r, "/auth/signed-out")
}

// SignedOut renders the confirmation page shown after logout.
// GET /auth/signed-out.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, PageMeta{
		Title:       "Signed out | " + appTitle,
		PageTitle:   appTitle,
		CurrentPage: PageSignedOut,
	}).Build()
	h.pages().Page(w, r, http.StatusOK, data)
}

type authStatusUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authStatusResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *authStatusUser `json:"user,omitempty"`
	Target        string          `json:"target,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

// Status reports the current session as JSON.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(w, r)
	if session == nil {
		WriteJSON(w, http.StatusOK, authStatusResponse{})
		return
	}
	expires := session.ExpiresAt
	WriteJSON(w, http.StatusOK, authStatusResponse{
		Authenticated: true,
		User: &authStatusUser{
			Name:  session.DisplayName(),
			Email: session.Email,
			Role:  string(session.Role),
		},
		Target:    string(session.Target()),
		ExpiresAt: &expires,
	})
}

// currentSession returns the live session for the request cookie, clearing a stale cookie.
func (h *AuthHandlers) currentSession(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		h.logger().DebugContext(r.Context(), "stale session cookie", "error", err)
		h.clearCookie(w, r, SessionCookieName)
		return nil
	}
	return session
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie expires a cookie, mirroring the attributes used when it was set.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// formFromRequest reads the auth form fields from a parsed request.
func formFromRequest(r *http.Request) service.AuthForm {
	return service.AuthForm{
		Mode: service.ParseFormMode(r.PostFormValue("mode")),
		Values: service.Credentials{
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
		},
	}
}

// captchaToken accepts the widget's default field name or an explicit captcha_token.
func captchaToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.PostFormValue("g-recaptcha-response")); tok != "" {
		return tok
	}
	return strings.TrimSpace(r.PostFormValue("captcha_token"))
}

func landingURL(mode service.FormMode) string {
	if mode == service.ModeSignUp {
		return "/?mode=signup"
	}
	return string(domainauth.RouteLanding)
}
