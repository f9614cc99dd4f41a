package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
)

// Classify returns a short error class for metric tags and logs.
// Application errors report their code; anything else reports the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
