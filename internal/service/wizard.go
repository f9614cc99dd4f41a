package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/metrics"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/statsd"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// WizardServiceOptions groups dependencies for WizardService.
type WizardServiceOptions struct {
	Store   ports.WizardStore // Required
	Rules   onboarding.Rules  // Validation rules and configured slots
	Metrics statsd.Sink       // Optional
	Logger  *slog.Logger      // Optional
}

// WizardService loads onboarding progress for a session, validates submitted answers,
// applies the domain transition and saves the result.
type WizardService struct {
	store   ports.WizardStore
	rules   onboarding.Rules
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewWizardService constructs a new WizardService.
func NewWizardService(opts WizardServiceOptions) (*WizardService, error) {
	if opts.Store == nil {
		return nil, errors.New("wizard store is required")
	}
	return &WizardService{store: opts.Store, rules: opts.Rules, metrics: opts.Metrics, logger: opts.Logger}, nil
}

func (s *WizardService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Rules exposes the validation rules (the templates render the configured slots).
func (s *WizardService) Rules() onboarding.Rules { return s.rules }

// StepResult is the outcome of submitting one step.
// On validation failure State is unchanged and Values echo the submitted input.
type StepResult struct {
	State       onboarding.State
	Values      map[string]string
	FieldErrors map[string]string
}

// Load returns the stored state for a session, or a fresh one.
func (s *WizardService) Load(ctx context.Context, sessionID string) (onboarding.State, error) {
	st, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return onboarding.State{}, fmt.Errorf("load wizard state: %w", err)
	}
	if !found {
		return onboarding.NewState(), nil
	}
	return st, nil
}

// SubmitTab validates the answers for the current details sub-tab and moves to the next one.
func (s *WizardService) SubmitTab(
	ctx context.Context,
	sessionID string,
	tab onboarding.TabID,
	get func(string) string,
) (StepResult, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return StepResult{}, err
	}
	if onboarding.TabIndex(tab) < 0 {
		return StepResult{State: st}, wizardError(onboarding.ErrUnknownTab)
	}
	if tab != st.CurrentTab {
		return StepResult{State: st}, wizardError(onboarding.ErrTabLocked)
	}

	step := onboarding.Step(tab)
	res, err := s.applyAnswers(ctx, &st, step, get)
	if err != nil {
		return res, err
	}
	if err := st.CompleteTab(tab); err != nil {
		return StepResult{State: st}, wizardError(err)
	}
	return s.save(ctx, sessionID, st, step, res.Values)
}

// SelectTab moves the tab cursor back to a reached tab.
func (s *WizardService) SelectTab(ctx context.Context, sessionID string, tab onboarding.TabID) (onboarding.State, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return st, err
	}
	if err := st.SelectTab(tab); err != nil {
		return st, wizardError(err)
	}
	if err := s.store.Save(ctx, sessionID, st); err != nil {
		return st, fmt.Errorf("save wizard state: %w", err)
	}
	return st, nil
}

// SubmitSection completes a section. Sections with a form have their answers validated first;
// the details section has none and completes once all of its sub-tabs are done.
func (s *WizardService) SubmitSection(
	ctx context.Context,
	sessionID string,
	section onboarding.SectionID,
	get func(string) string,
) (StepResult, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return StepResult{}, err
	}
	if onboarding.SectionIndex(section) < 0 {
		return StepResult{State: st}, wizardError(onboarding.ErrUnknownSection)
	}
	if !st.CanExpand(section) {
		return StepResult{State: st}, wizardError(onboarding.ErrSectionLocked)
	}

	var values map[string]string
	step := onboarding.Step(section)
	if section != onboarding.SectionDetails {
		res, err := s.applyAnswers(ctx, &st, step, get)
		if err != nil {
			return res, err
		}
		values = res.Values
	}
	if err := st.Complete(section); err != nil {
		return StepResult{State: st}, wizardError(err)
	}
	return s.save(ctx, sessionID, st, step, values)
}

// Navigate opens a section. Locked sections are rejected and nothing is saved.
func (s *WizardService) Navigate(ctx context.Context, sessionID string, section onboarding.SectionID) (onboarding.State, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return st, err
	}
	if err := st.Navigate(section); err != nil {
		return st, wizardError(err)
	}
	if err := s.store.Save(ctx, sessionID, st); err != nil {
		return st, fmt.Errorf("save wizard state: %w", err)
	}
	return st, nil
}

// Reset discards all progress for a session.
func (s *WizardService) Reset(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete wizard state: %w", err)
	}
	return nil
}

func (s *WizardService) applyAnswers(
	ctx context.Context,
	st *onboarding.State,
	step onboarding.Step,
	get func(string) string,
) (StepResult, error) {
	values, err := onboarding.Collect(step, get)
	if err != nil {
		return StepResult{State: *st}, wizardError(err)
	}
	fieldErrs, err := s.rules.Validate(step, values)
	if err != nil {
		return StepResult{State: *st}, wizardError(err)
	}
	if len(fieldErrs) > 0 {
		metrics.Emit(s.metrics, metrics.Outcome{
			Name: metrics.WizardStep, Result: metrics.ResultRejected, Tags: map[string]string{"step": string(step)},
		})
		s.log().DebugContext(ctx, "wizard step rejected", "step", step, "fields", len(fieldErrs))
		return StepResult{State: *st, Values: values, FieldErrors: fieldErrs}, apperrors.ValidationFields(fieldErrs)
	}
	st.SetAnswers(step, values)
	return StepResult{State: *st, Values: values}, nil
}

func (s *WizardService) save(
	ctx context.Context,
	sessionID string,
	st onboarding.State,
	step onboarding.Step,
	values map[string]string,
) (StepResult, error) {
	if err := s.store.Save(ctx, sessionID, st); err != nil {
		metrics.Emit(s.metrics, metrics.Outcome{
			Name: metrics.WizardStep, Result: metrics.ResultError, Err: err, Tags: map[string]string{"step": string(step)},
		})
		return StepResult{State: st, Values: values}, fmt.Errorf("save wizard state: %w", err)
	}
	metrics.Emit(s.metrics, metrics.Outcome{
		Name: metrics.WizardStep, Result: metrics.ResultSuccess, Tags: map[string]string{"step": string(step)},
	})
	done, total := st.Progress()
	s.log().InfoContext(ctx, "wizard step completed", "step", step, "completed", done, "total", total)
	return StepResult{State: st, Values: values}, nil
}

// wizardError maps domain transition errors to AppErrors.
func wizardError(err error) error {
	switch {
	case errors.Is(err, onboarding.ErrUnknownSection), errors.Is(err, onboarding.ErrUnknownTab),
		errors.Is(err, onboarding.ErrUnknownStep):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "That step does not exist.")
	case errors.Is(err, onboarding.ErrSectionLocked):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Complete the previous section first.")
	case errors.Is(err, onboarding.ErrTabLocked):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Complete the previous step first.")
	case errors.Is(err, onboarding.ErrTabsIncomplete):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Complete every step of this section first.")
	default:
		return err
	}
}
