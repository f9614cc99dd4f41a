package viewmodel

import (
	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
)

//nolint:gochecknoglobals // display titles for the details sub-tabs
var tabTitles = map[onboarding.TabID]string{
	onboarding.TabPersonal:     "Personal Details",
	onboarding.TabExperience:   "Experience",
	onboarding.TabAvailability: "Availability",
}

// WizardSection is one accordion entry of the wizard.
type WizardSection struct {
	ID        string
	Title     string
	Number    int
	Completed bool
	Current   bool
	Locked    bool
}

// WizardTab is one sub-tab of the details section.
type WizardTab struct {
	ID        string
	Title     string
	Completed bool
	Current   bool
	Locked    bool
	Back      string // previous tab id, "" for the first tab
}

// Weekday pairs an availability field with its label.
type Weekday struct {
	Field string
	Label string
}

// WizardOptions holds the choice lists rendered by the section forms.
type WizardOptions struct {
	Referral            []onboarding.Option
	DeliveryExperience  []onboarding.Option
	MopedLicence        []onboarding.Option
	Availability        []onboarding.Option
	Employment          []onboarding.Option
	HighwayCode         []onboarding.Option
	HighwayCodeQuestion string
	InterviewSlots      []onboarding.Option
	TrainingSlots       []onboarding.Option
	Weekdays            []Weekday
}

// Wizard is the applicant wizard as rendered.
type Wizard struct {
	Sections     []WizardSection
	Tabs         []WizardTab
	CurrentTab   string
	TabsComplete bool
	Completed    int
	Total        int
	Percent      int
	Finished     bool
	Options      WizardOptions

	answers   map[string]map[string]string
	submitted map[string]string
	errors    map[string]string
	step      string
}

// WizardInput carries what the handler knows about the latest submission.
type WizardInput struct {
	State  onboarding.State
	Rules  onboarding.Rules
	Step   onboarding.Step   // step whose form was just submitted, if any
	Values map[string]string // echoed input of a rejected submission
	Errors map[string]string
}

// NewWizard builds the view of a wizard state.
func NewWizard(in WizardInput) Wizard {
	st := in.State
	done, total := st.Progress()
	w := Wizard{
		CurrentTab:   string(st.CurrentTab),
		TabsComplete: st.TabsComplete(),
		Completed:    done,
		Total:        total,
		Finished:     st.IsFinished(),
		Options:      newWizardOptions(in.Rules),
		answers:      st.Answers,
		submitted:    in.Values,
		errors:       in.Errors,
		step:         string(in.Step),
	}
	if total > 0 {
		w.Percent = done * 100 / total
	}

	for i, sec := range onboarding.Sections() {
		w.Sections = append(w.Sections, WizardSection{
			ID:        string(sec.ID),
			Title:     sec.Title,
			Number:    i + 1,
			Completed: st.IsCompleted(sec.ID),
			Current:   st.Current == sec.ID,
			Locked:    !st.CanExpand(sec.ID),
		})
	}

	var prev onboarding.TabID
	for _, tab := range onboarding.Tabs() {
		w.Tabs = append(w.Tabs, WizardTab{
			ID:        string(tab),
			Title:     tabTitles[tab],
			Completed: st.IsTabCompleted(tab),
			Current:   st.CurrentTab == tab,
			Locked:    !st.CanSelectTab(tab),
			Back:      string(prev),
		})
		prev = tab
	}
	return w
}

func newWizardOptions(rules onboarding.Rules) WizardOptions {
	days := make([]Weekday, 0, len(onboarding.Weekdays))
	for _, d := range onboarding.Weekdays {
		days = append(days, Weekday{Field: onboarding.AvailabilityField(d), Label: capitalize(d)})
	}
	return WizardOptions{
		Referral:            onboarding.ReferralOptions,
		DeliveryExperience:  onboarding.DeliveryExperienceOptions,
		MopedLicence:        onboarding.MopedLicenceOptions,
		Availability:        onboarding.AvailabilityOptions,
		Employment:          onboarding.EmploymentOptions,
		HighwayCode:         onboarding.HighwayCodeOptions,
		HighwayCodeQuestion: onboarding.HighwayCodeQuestion,
		InterviewSlots:      rules.InterviewSlots,
		TrainingSlots:       rules.TrainingSlots,
		Weekdays:            days,
	}
}

// Value returns the value to prefill for a field of a step. A rejected submission
// wins over previously saved answers.
func (w Wizard) Value(step, field string) string {
	if step == w.step && w.submitted != nil {
		return w.submitted[field]
	}
	return w.answers[step][field]
}

// Error returns the field error for the step that was just submitted.
func (w Wizard) Error(step, field string) string {
	if step != w.step {
		return ""
	}
	return w.errors[field]
}

// Summary returns the saved answers of a step, for read-only display of completed sections.
func (w Wizard) Summary(step string) map[string]string {
	return w.answers[step]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
