package onboarding

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bnastase-alt/rider-onboarding/internal/validation"
)

// Step names a form that collects answers: one of the details sub-tabs or a later section.
type Step string

const (
	StepPersonal     = Step(TabPersonal)
	StepExperience   = Step(TabExperience)
	StepAvailability = Step(TabAvailability)
	StepHighwayCode  = Step(SectionHighwayCode)
	StepInterview    = Step(SectionInterview)
	StepTraining     = Step(SectionTraining)
	StepBank         = Step(SectionBank)
)

// ErrUnknownStep is returned when answers are submitted for a step with no form.
var ErrUnknownStep = errors.New("unknown step")

// Option is a selectable value with its display label.
type Option struct {
	Value string
	Label string
}

// Option lists rendered by the wizard templates and enforced by Rules.
//
//nolint:gochecknoglobals // static read-only option tables
var (
	ReferralOptions = []Option{
		{Value: "yes", Label: "Yes"},
		{Value: "no", Label: "No"},
	}
	DeliveryExperienceOptions = []Option{
		{Value: "cargo-bike", Label: "I have delivered by cargo bike"},
		{Value: "bike", Label: "I have delivered by bike"},
		{Value: "car-van", Label: "I have delivered by car or van"},
		{Value: "can-bike", Label: "I can ride a bike"},
		{Value: "none", Label: "None of the above"},
	}
	MopedLicenceOptions = []Option{
		{Value: "yes", Label: "Yes"},
		{Value: "learning", Label: "Learning"},
		{Value: "no", Label: "No"},
	}
	AvailabilityOptions = []Option{
		{Value: "all-day", Label: "All Day (9AM-6PM)"},
		{Value: "morning", Label: "Morning (9AM-1PM)"},
		{Value: "afternoon", Label: "Afternoon (1PM-6PM)"},
		{Value: "unavailable", Label: "Unavailable"},
	}
	EmploymentOptions = []Option{
		{Value: "full-time", Label: "Full-time employed"},
		{Value: "part-time", Label: "Part-time employed"},
		{Value: "self-employed", Label: "Self-employed"},
		{Value: "student", Label: "Student"},
		{Value: "unemployed", Label: "Unemployed"},
	}
	HighwayCodeOptions = []Option{
		{Value: "stop", Label: "Stop"},
		{Value: "go", Label: "Go"},
		{Value: "proceed-with-caution", Label: "Proceed with caution"},
	}
	Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// HighwayCodeQuestion is the single question of the highway code test.
const HighwayCodeQuestion = "What should you do when approaching a red traffic light?"

const highwayCodeAnswer = "stop"

var (
	ukMobilePattern      = regexp.MustCompile(`^\+44\s?7\d{3}\s?\d{6}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{8}$`)
	sortCodePattern      = regexp.MustCompile(`^\d{2}-?\d{2}-?\d{2}$`)
	earliestBirthDate    = time.Date(1920, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Rules validates step answers. Slot lists come from configuration.
type Rules struct {
	Now            func() time.Time
	InterviewSlots []Option
	TrainingSlots  []Option
}

func (r Rules) today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fields returns the form field names accepted for a step.
func Fields(step Step) ([]string, error) {
	switch step {
	case StepPersonal:
		return []string{"first_name", "last_name", "dob", "mobile", "address", "referred", "referrer"}, nil
	case StepExperience:
		return []string{"delivery_experience", "moped_licence"}, nil
	case StepAvailability:
		fields := make([]string, 0, len(Weekdays)+1)
		for _, d := range Weekdays {
			fields = append(fields, AvailabilityField(d))
		}
		return append(fields, "employment_status"), nil
	case StepHighwayCode:
		return []string{"red_light"}, nil
	case StepInterview:
		return []string{"interview_slot"}, nil
	case StepTraining:
		return []string{"training_slot"}, nil
	case StepBank:
		return []string{"account_number", "sort_code"}, nil
	default:
		return nil, ErrUnknownStep
	}
}

// AvailabilityField returns the form field name for a weekday.
func AvailabilityField(day string) string { return "availability_" + day }

// Collect picks the step's fields out of raw input and trims them.
func Collect(step Step, get func(string) string) (map[string]string, error) {
	fields, err := Fields(step)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = strings.TrimSpace(get(f))
	}
	return out, nil
}

// Validate checks the answers for a step and returns field errors (empty when valid).
func (r Rules) Validate(step Step, values map[string]string) (map[string]string, error) {
	fv := validation.New()
	switch step {
	case StepPersonal:
		fv.Validate("first_name", values["first_name"], validation.Required("First name is required.")).
			Validate("last_name", values["last_name"], validation.Required("Last name is required.")).
			Validate("dob", values["dob"],
				validation.Required("Date of birth is required."),
				validation.DateRange(earliestBirthDate, r.today, "Enter a date of birth between 1920 and today."),
			).
			Validate("mobile", values["mobile"], validation.Matches(ukMobilePattern, "Invalid UK mobile number.")).
			Validate("address", values["address"], validation.Required("Address is required.")).
			Validate("referred", values["referred"],
				validation.OneOf(optionValues(ReferralOptions), "Tell us whether someone referred you."),
			).
			Validate("referrer", values["referrer"],
				validation.When(values["referred"] == "yes", validation.Required("Referrer's name is required.")),
			)
	case StepExperience:
		fv.Validate("delivery_experience", values["delivery_experience"],
			validation.OneOf(optionValues(DeliveryExperienceOptions), "Select your delivery experience."),
		).Validate("moped_licence", values["moped_licence"],
			validation.OneOf(optionValues(MopedLicenceOptions), "Select your moped licence status."),
		)
	case StepAvailability:
		for _, d := range Weekdays {
			field := AvailabilityField(d)
			fv.Validate(field, values[field], validation.OneOf(optionValues(AvailabilityOptions), "Select availability."))
		}
		fv.Validate("employment_status", values["employment_status"],
			validation.OneOf(optionValues(EmploymentOptions), "Select your current employment status."),
		)
	case StepHighwayCode:
		fv.Validate("red_light", values["red_light"],
			validation.OneOf(optionValues(HighwayCodeOptions), "Select your answer."),
			validation.Equals(highwayCodeAnswer, "That answer is incorrect. Review the Highway Code and try again."),
		)
	case StepInterview:
		fv.Validate("interview_slot", values["interview_slot"],
			validation.OneOf(optionValues(r.InterviewSlots), "Select an interview date."),
		)
	case StepTraining:
		fv.Validate("training_slot", values["training_slot"],
			validation.OneOf(optionValues(r.TrainingSlots), "Select a training date."),
		)
	case StepBank:
		fv.Validate("account_number", values["account_number"],
			validation.Matches(accountNumberPattern, "Account number must be 8 digits."),
		).Validate("sort_code", values["sort_code"],
			validation.Matches(sortCodePattern, "Sort code must look like 12-34-56."),
		)
	default:
		return nil, ErrUnknownStep
	}
	return fv.Errors(), nil
}

func optionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
