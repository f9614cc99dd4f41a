package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
)

// OnboardingConfig lists the dates applicants can book, each as
// "value|label" entries separated by ";".
type OnboardingConfig struct {
	InterviewSlots string `env:"INTERVIEW_SLOTS" envDefault:"date1|June 1, 2023;date2|June 2, 2023;date3|June 3, 2023"`
	TrainingSlots  string `env:"TRAINING_SLOTS"  envDefault:"date1|June 5, 2023;date2|June 6, 2023;date3|June 7, 2023"`
}

// Rules builds the wizard validation rules from the configured slots.
func (c OnboardingConfig) Rules() (onboarding.Rules, error) {
	interview, err := ParseSlots(c.InterviewSlots)
	if err != nil {
		return onboarding.Rules{}, fmt.Errorf("ONBOARDING_INTERVIEW_SLOTS: %w", err)
	}
	training, err := ParseSlots(c.TrainingSlots)
	if err != nil {
		return onboarding.Rules{}, fmt.Errorf("ONBOARDING_TRAINING_SLOTS: %w", err)
	}
	return onboarding.Rules{InterviewSlots: interview, TrainingSlots: training}, nil
}

// Validate requires at least one parsable slot of each kind.
func (c OnboardingConfig) Validate() error {
	rules, err := c.Rules()
	if err != nil {
		return err
	}
	if len(rules.InterviewSlots) == 0 || len(rules.TrainingSlots) == 0 {
		return errors.New("ONBOARDING_INTERVIEW_SLOTS and ONBOARDING_TRAINING_SLOTS must list at least one slot")
	}
	return nil
}

// ParseSlots parses "value|label;value|label". An entry without a label uses its value as the label.
func ParseSlots(raw string) ([]onboarding.Option, error) {
	var out []onboarding.Option
	seen := make(map[string]bool)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		value, label, _ := strings.Cut(entry, "|")
		value, label = strings.TrimSpace(value), strings.TrimSpace(label)
		if value == "" {
			return nil, fmt.Errorf("invalid slot %q: value is empty", entry)
		}
		if seen[value] {
			return nil, fmt.Errorf("duplicate slot value %q", value)
		}
		seen[value] = true
		if label == "" {
			label = value
		}
		out = append(out, onboarding.Option{Value: value, Label: label})
	}
	return out, nil
}
