package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
)

const genericErrorMessage = "Something went wrong. Please try again."

// ErrorView is an error reduced to what a page may show.
type ErrorView struct {
	Message     string
	FieldErrors map[string]string
	Status      int
}

// DescribeError maps an error to a user-facing message, field errors and status code.
// AppError messages are shown as-is; anything else gets a generic message so internal
// detail never reaches the browser.
func DescribeError(err error) ErrorView {
	if err == nil {
		return ErrorView{Status: http.StatusOK}
	}

	mapped := err
	if apperrors.GetCode(err) == "" {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return ErrorView{Message: "Request timed out. Please try again.", Status: http.StatusGatewayTimeout}
		case errors.Is(err, context.Canceled):
			return ErrorView{Message: "Request was canceled.", Status: http.StatusServiceUnavailable}
		}
		mapped = apperrors.MapDBError(err)
	}

	view := ErrorView{
		Message:     apperrors.UserMessage(mapped, genericErrorMessage),
		FieldErrors: apperrors.GetFields(mapped),
		Status:      statusForError(mapped),
	}
	if field := apperrors.GetField(mapped); field != "" && len(view.FieldErrors) == 0 {
		view.FieldErrors = map[string]string{field: view.Message}
	}
	if len(view.FieldErrors) > 0 {
		view.Message = errMsgFixBelow
	}
	return view
}

// ErrorPageOpts groups parameters for rendering a standalone error page.
type ErrorPageOpts struct {
	Status  int
	Title   string
	Message string
}

// renderErrorPage renders the error layout with the given status. htmx requests get a toast
// instead because swapping a whole error page into a fragment target is never wanted.
func (p pageRenderer) renderErrorPage(w http.ResponseWriter, r *http.Request, opts ErrorPageOpts) {
	if opts.Status == 0 {
		opts.Status = http.StatusInternalServerError
	}
	if opts.Message == "" {
		opts.Message = genericErrorMessage
	}
	if opts.Title == "" {
		opts.Title = http.StatusText(opts.Status)
	}

	if IsHTMX(r) {
		HTMX(w).Toast(opts.Message, ToastError)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := NewTemplateData(r, PageMeta{Title: opts.Title, PageTitle: opts.Title}).
		WithError(opts.Message).
		With("StatusCode", opts.Status).
		Build()
	if err := p.T.RenderError(withStatus(w, opts.Status), r, data); err != nil {
		p.templateError(w, r, err, "error page")
	}
}
