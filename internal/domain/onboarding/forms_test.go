package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() Rules {
	return Rules{
		Now:            func() time.Time { return time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC) },
		InterviewSlots: []Option{{Value: "2024-06-10", Label: "June 10, 2024"}},
		TrainingSlots:  []Option{{Value: "2024-06-17", Label: "June 17, 2024"}},
	}
}

func validPersonal() map[string]string {
	return map[string]string{
		"first_name": "Jo",
		"last_name":  "Bloggs",
		"dob":        "1995-02-14",
		"mobile":     "+44 7700 900123",
		"address":    "1 High Street, London",
		"referred":   "no",
	}
}

func TestValidate_Personal(t *testing.T) {
	r := testRules()

	errs, err := r.Validate(StepPersonal, validPersonal())
	require.NoError(t, err)
	assert.Empty(t, errs)

	bad := validPersonal()
	bad["first_name"] = " "
	bad["mobile"] = "07700900123"
	bad["dob"] = "2030-01-01"
	bad["referred"] = "yes"
	errs, err = r.Validate(StepPersonal, bad)
	require.NoError(t, err)
	assert.Equal(t, "First name is required.", errs["first_name"])
	assert.Equal(t, "Invalid UK mobile number.", errs["mobile"])
	assert.Contains(t, errs, "dob")
	assert.Equal(t, "Referrer's name is required.", errs["referrer"])
}

func TestValidate_MobileFormats(t *testing.T) {
	r := testRules()
	for _, mobile := range []string{"+447700900123", "+44 7700900123", "+447700 900123"} {
		v := validPersonal()
		v["mobile"] = mobile
		errs, err := r.Validate(StepPersonal, v)
		require.NoError(t, err)
		assert.NotContains(t, errs, "mobile", mobile)
	}
}

func TestValidate_Availability(t *testing.T) {
	r := testRules()
	values := map[string]string{"employment_status": "student"}
	for _, d := range Weekdays {
		values[AvailabilityField(d)] = "morning"
	}
	errs, err := r.Validate(StepAvailability, values)
	require.NoError(t, err)
	assert.Empty(t, errs)

	values[AvailabilityField("sunday")] = "evening"
	errs, err = r.Validate(StepAvailability, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"availability_sunday": "Select availability."}, errs)
}

func TestValidate_HighwayCode(t *testing.T) {
	r := testRules()

	errs, err := r.Validate(StepHighwayCode, map[string]string{"red_light": "stop"})
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = r.Validate(StepHighwayCode, map[string]string{"red_light": "go"})
	require.NoError(t, err)
	assert.Contains(t, errs["red_light"], "incorrect")

	errs, err = r.Validate(StepHighwayCode, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "Select your answer.", errs["red_light"])
}

func TestValidate_Slots(t *testing.T) {
	r := testRules()

	errs, err := r.Validate(StepInterview, map[string]string{"interview_slot": "2024-06-10"})
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = r.Validate(StepTraining, map[string]string{"training_slot": "2024-06-10"})
	require.NoError(t, err)
	assert.Equal(t, "Select a training date.", errs["training_slot"])
}

func TestValidate_Bank(t *testing.T) {
	r := testRules()

	errs, err := r.Validate(StepBank, map[string]string{"account_number": "12345678", "sort_code": "12-34-56"})
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = r.Validate(StepBank, map[string]string{"account_number": "1234", "sort_code": "12/34/56"})
	require.NoError(t, err)
	assert.Len(t, errs, 2)
}

func TestValidate_UnknownStep(t *testing.T) {
	_, err := testRules().Validate(Step("payroll"), nil)
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestCollect_KeepsOnlyStepFields(t *testing.T) {
	raw := map[string]string{
		"account_number": " 12345678 ",
		"sort_code":      "12-34-56",
		"csrf_token":     "abc",
	}
	got, err := Collect(StepBank, func(k string) string { return raw[k] })
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"account_number": "12345678", "sort_code": "12-34-56"}, got)
}
