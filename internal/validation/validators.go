package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// emailPattern accepts anything shaped like local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DateLayout is the layout used by HTML date inputs.
const DateLayout = "2006-01-02"

// Required validates that a field is not blank.
func Required(msg string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return msg
		}
		return ""
	}
}

// MinLen validates that a field has at least n characters.
// Uses rune count for proper Unicode support. Whitespace is not trimmed so passwords are measured as typed.
func MinLen(n int, msg string) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

// MaxLen validates that a field does not exceed n characters.
func MaxLen(n int, msg string) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return msg
		}
		return ""
	}
}

// Email validates that a field looks like an email address.
func Email(msg string) Validator {
	return Matches(emailPattern, msg)
}

// Matches validates that a trimmed field matches the provided regular expression.
func Matches(re *regexp.Regexp, msg string) Validator {
	return func(v string) string {
		if !re.MatchString(strings.TrimSpace(v)) {
			return msg
		}
		return ""
	}
}

// OneOf validates that a field matches one of the provided options exactly.
func OneOf(options []string, msg string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		for _, opt := range options {
			if v == opt {
				return ""
			}
		}
		return msg
	}
}

// Equals validates that a field equals the expected value (e.g. password confirmation).
func Equals(expected, msg string) Validator {
	return func(v string) string {
		if v != expected {
			return msg
		}
		return ""
	}
}

// DateRange validates an ISO date (YYYY-MM-DD) lying within [earliest, latest()].
// latest is a func so callers can pin "today" in tests.
func DateRange(earliest time.Time, latest func() time.Time, msg string) Validator {
	return func(v string) string {
		d, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return msg
		}
		if d.Before(earliest) || d.After(latest()) {
			return msg
		}
		return ""
	}
}

// When applies validators only if cond holds.
func When(cond bool, validators ...Validator) Validator {
	return func(v string) string {
		if !cond {
			return ""
		}
		for _, fn := range validators {
			if msg := fn(v); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break // Stop at first error per field
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether every field passed.
func (fv *FieldValidator) Valid() bool {
	return len(fv.errors) == 0
}
