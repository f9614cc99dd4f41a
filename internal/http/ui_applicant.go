package httpx

import (
	"net/http"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/http/ui/viewmodel"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

const (
	msgSectionCompleted = "Section completed."
	msgWizardFinished   = "Application complete! We'll be in touch about next steps."
)

// wizardRender groups what one render of the wizard needs.
type wizardRender struct {
	Session *domainauth.Session
	Input   viewmodel.WizardInput
	Status  int
}

// Applicant renders the onboarding wizard.
// GET /applicant.
func (h *UIHandlers) Applicant(w http.ResponseWriter, r *http.Request) {
	session, ok := h.guardLayout(w, r)
	if !ok {
		return
	}
	st, err := h.Wizard.Load(r.Context(), session.ID)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "load wizard state failed", "error", err)
		h.pages().renderErrorPage(w, r, ErrorPageOpts{Status: http.StatusInternalServerError})
		return
	}
	h.renderWizard(w, r, wizardRender{Session: session, Input: viewmodel.WizardInput{State: st}})
}

// SubmitTab validates the current details sub-tab and moves to the next one.
// POST /applicant/tabs/{tab}.
func (h *UIHandlers) SubmitTab(w http.ResponseWriter, r *http.Request) {
	session, ok := h.wizardRequest(w, r)
	if !ok {
		return
	}
	tab := onboarding.TabID(r.PathValue("tab"))
	res, err := h.Wizard.SubmitTab(r.Context(), session.ID, tab, r.PostFormValue)
	h.afterStep(w, r, stepOutcome{Session: session, Step: onboarding.Step(tab), Result: res, Err: err})
}

// SelectTab moves back to an already reached sub-tab.
// POST /applicant/tabs/{tab}/select.
func (h *UIHandlers) SelectTab(w http.ResponseWriter, r *http.Request) {
	session, ok := h.wizardRequest(w, r)
	if !ok {
		return
	}
	st, err := h.Wizard.SelectTab(r.Context(), session.ID, onboarding.TabID(r.PathValue("tab")))
	h.afterStep(w, r, stepOutcome{Session: session, Result: service.StepResult{State: st}, Err: err})
}

// SubmitSection completes a section after validating its answers.
// POST /applicant/sections/{section}.
func (h *UIHandlers) SubmitSection(w http.ResponseWriter, r *http.Request) {
	session, ok := h.wizardRequest(w, r)
	if !ok {
		return
	}
	section := onboarding.SectionID(r.PathValue("section"))
	res, err := h.Wizard.SubmitSection(r.Context(), session.ID, section, r.PostFormValue)
	out := stepOutcome{Session: session, Step: onboarding.Step(section), Result: res, Err: err}
	if err == nil {
		out.Toast = msgSectionCompleted
		if res.State.IsFinished() {
			out.Toast = msgWizardFinished
		}
	}
	h.afterStep(w, r, out)
}

// OpenSection expands a section. Locked sections are refused.
// POST /applicant/sections/{section}/open.
func (h *UIHandlers) OpenSection(w http.ResponseWriter, r *http.Request) {
	session, ok := h.wizardRequest(w, r)
	if !ok {
		return
	}
	st, err := h.Wizard.Navigate(r.Context(), session.ID, onboarding.SectionID(r.PathValue("section")))
	h.afterStep(w, r, stepOutcome{Session: session, Result: service.StepResult{State: st}, Err: err})
}

// wizardRequest runs the layout guard and parses the posted form.
func (h *UIHandlers) wizardRequest(w http.ResponseWriter, r *http.Request) (*domainauth.Session, bool) {
	session, ok := h.guardLayout(w, r)
	if !ok {
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil, false
	}
	return session, true
}

// stepOutcome is the result of one wizard mutation.
type stepOutcome struct {
	Session *domainauth.Session
	Step    onboarding.Step
	Result  service.StepResult
	Err     error
	Toast   string
}

// afterStep renders the wizard after a mutation. Field errors are shown inline; other errors
// raise a toast and leave the wizard as it was. Plain form posts are redirected back to the
// page on success.
func (h *UIHandlers) afterStep(w http.ResponseWriter, r *http.Request, out stepOutcome) {
	if out.Err == nil {
		if !IsHTMX(r) {
			http.Redirect(w, r, string(domainauth.RouteApplicant), http.StatusSeeOther)
			return
		}
		HTMX(w).Toast(out.Toast, ToastSuccess)
		h.renderWizard(w, r, wizardRender{Session: out.Session, Input: viewmodel.WizardInput{State: out.Result.State}})
		return
	}

	view := DescribeError(out.Err)
	if view.Status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "wizard update failed", "step", out.Step, "error", out.Err)
	}

	st := out.Result.State
	if st.Current == "" {
		// The store failed before any state was read.
		loaded, err := h.Wizard.Load(r.Context(), out.Session.ID)
		if err != nil {
			h.pages().renderErrorPage(w, r, ErrorPageOpts{Status: view.Status, Message: view.Message})
			return
		}
		st = loaded
	}

	render := wizardRender{
		Session: out.Session,
		Input: viewmodel.WizardInput{
			State:  st,
			Step:   out.Step,
			Values: out.Result.Values,
			Errors: out.Result.FieldErrors,
		},
	}
	if IsHTMX(r) {
		if !apperrors.IsValidation(out.Err) || len(out.Result.FieldErrors) == 0 {
			HTMX(w).Toast(view.Message, ToastError)
		}
	} else {
		render.Status = view.Status
	}
	h.renderWizard(w, r, render)
}

// renderWizard renders the wizard fragment for htmx, or the full applicant page.
func (h *UIHandlers) renderWizard(w http.ResponseWriter, r *http.Request, wr wizardRender) {
	wr.Input.Rules = h.Wizard.Rules()
	wizard := viewmodel.NewWizard(wr.Input)

	if WantsPartial(r) && r.Method != http.MethodGet {
		h.pages().Fragment(w, r, fragmentWizard, map[string]any{
			"Wizard":    wizard,
			"CSRFToken": GetCSRFToken(r),
		})
		return
	}
	data := NewTemplateData(r, PageMeta{
		Title:       "Your application | " + appTitle,
		PageTitle:   "Your application",
		CurrentPage: PageApplicant,
	}).With("Wizard", wizard).Build()
	h.pages().Page(w, r, wr.Status, data)
}
