package validation

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	v := Email("bad email")
	assert.Empty(t, v("user@example.com"))
	assert.Empty(t, v("  user@example.com  "))
	assert.Equal(t, "bad email", v("user@example"))
	assert.Equal(t, "bad email", v("user example.com"))
	assert.Equal(t, "bad email", v(""))
}

func TestMinLen_CountsRunes(t *testing.T) {
	v := MinLen(3, "too short")
	assert.Empty(t, v("Zoë"))
	assert.Equal(t, "too short", v("Al"))
}

func TestMatches(t *testing.T) {
	v := Matches(regexp.MustCompile(`^\d{8}$`), "digits")
	assert.Empty(t, v("12345678"))
	assert.Equal(t, "digits", v("1234"))
}

func TestOneOf(t *testing.T) {
	v := OneOf([]string{"yes", "no"}, "pick one")
	assert.Empty(t, v("yes"))
	assert.Equal(t, "pick one", v("YES"))
	assert.Equal(t, "pick one", v(""))
}

func TestDateRange(t *testing.T) {
	earliest := time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC)
	today := func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	v := DateRange(earliest, today, "bad date")

	assert.Empty(t, v("1990-05-17"))
	assert.Empty(t, v("1920-01-01"))
	assert.Equal(t, "bad date", v("1919-12-31"))
	assert.Equal(t, "bad date", v("2024-06-02"))
	assert.Equal(t, "bad date", v("17/05/1990"))
}

func TestWhen(t *testing.T) {
	assert.Empty(t, When(false, Required("needed"))(""))
	assert.Equal(t, "needed", When(true, Required("needed"))(""))
}

func TestFieldValidator_FirstErrorPerField(t *testing.T) {
	fv := New().
		Validate("email", "", Required("Email is required"), Email("Enter a valid email address")).
		Validate("password", "secret", MinLen(8, "Password must be at least 8 characters")).
		Validate("name", "Alice", Required("Name is required"))

	assert.False(t, fv.Valid())
	assert.Equal(t, map[string]string{
		"email":    "Email is required",
		"password": "Password must be at least 8 characters",
	}, fv.Errors())
}
