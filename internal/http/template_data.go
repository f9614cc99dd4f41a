package httpx

import (
	"maps"
	"net/http"

	"github.com/bnastase-alt/rider-onboarding/internal/http/ui/viewmodel"
)

const errMsgFixBelow = "Please fix the errors below."

// PageMeta names a page for the layout: document title, heading and nav key.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// layoutFor reads the CSRF token and the signed-in user off the request.
func layoutFor(r *http.Request, meta PageMeta) viewmodel.Layout {
	l := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}
	sess := CurrentSession(r.Context())
	if sess == nil {
		return l
	}
	l.IsAuthenticated = true
	l.IsElevated = sess.IsElevated()
	l.User = &viewmodel.User{Name: sess.DisplayName(), Email: sess.Email, Role: string(sess.Role)}
	return l
}

// TemplateDataBuilder assembles the map a page template executes against.
// Layout keys sit at the top level so partials can read .CSRFToken and .User directly.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData seeds the builder with the layout for r.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	l := layoutFor(r, meta)
	data := map[string]any{
		"Title":           l.Title,
		"PageTitle":       l.PageTitle,
		"CurrentPage":     l.CurrentPage,
		"CSRFToken":       l.CSRFToken,
		"IsAuthenticated": l.IsAuthenticated,
		"IsElevated":      l.IsElevated,
	}
	if l.User != nil {
		data["User"] = l.User
	}
	return &TemplateDataBuilder{data: data}
}

// WithError shows msg in the page-level error banner.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors sets per-field messages; an empty map is skipped.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) == 0 {
		return b
	}
	b.data["Errors"] = errs
	return b
}

// With sets one page-specific value.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// WithAll merges extra into the data, overwriting existing keys.
func (b *TemplateDataBuilder) WithAll(extra map[string]any) *TemplateDataBuilder {
	maps.Copy(b.data, extra)
	return b
}

// Build returns the assembled map.
func (b *TemplateDataBuilder) Build() map[string]any { return b.data }
