package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeSession,
				Message: "session expired",
			},
			want: "session expired",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeProfileLookup,
				Message: "failed to load profile",
				Cause:   errors.New("connection refused"),
			},
			want: "failed to load profile: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through AppError")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("boom"), ErrCodeProvider, "sign in for %s", "a@b.co")
	if err.Message != "sign in for a@b.co" {
		t.Errorf("Wrapf().Message = %q", err.Message)
	}
	if err.Code != ErrCodeProvider {
		t.Errorf("Wrapf().Code = %v, want %v", err.Code, ErrCodeProvider)
	}
}

func TestValidationFields(t *testing.T) {
	fields := map[string]string{"email": "Invalid email", "password": "Too short"}
	err := ValidationFields(fields)

	if !IsValidation(err) {
		t.Fatal("ValidationFields() should be a validation error")
	}
	if got := GetFields(err); len(got) != 2 || got["email"] != "Invalid email" {
		t.Errorf("GetFields() = %v", got)
	}

	single := ValidationField("email", "Invalid email")
	if GetField(single) != "email" {
		t.Errorf("GetField() = %q, want email", GetField(single))
	}
	if GetFields(single)["email"] != "Invalid email" {
		t.Errorf("ValidationField() should populate Fields")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"captcha", Captcha("bad token"), IsCaptcha, true},
		{"session", Session("expired"), IsSession, true},
		{"not found", NotFound("missing"), IsNotFound, true},
		{"internal", Internal("oops"), IsInternal, true},
		{"timeout", New(ErrCodeTimeout, "slow"), IsTimeout, true},
		{"profile lookup", New(ErrCodeProfileLookup, "no profile"), IsProfileLookup, true},
		{"wrapped captcha", fmt.Errorf("ctx: %w", Captcha("bad")), IsCaptcha, true},
		{"plain error", errors.New("plain"), IsCaptcha, false},
		{"nil", nil, IsSession, false},
		{"other code", Internal("x"), IsValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsAuthProvider(t *testing.T) {
	for _, code := range []ErrorCode{
		ErrCodeRateLimited, ErrCodeInvalidCredentials, ErrCodeDuplicateAccount, ErrCodeProvider,
	} {
		if !IsAuthProvider(New(code, "x")) {
			t.Errorf("IsAuthProvider(%s) = false, want true", code)
		}
	}
	if IsAuthProvider(Captcha("x")) {
		t.Error("captcha errors are not provider errors")
	}
	if IsAuthProvider(errors.New("plain")) {
		t.Error("plain errors are not provider errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRateLimited, "slow down")); got != ErrCodeRateLimited {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeRateLimited)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	const fallback = "Something went wrong. Please try again."

	if got := UserMessage(New(ErrCodeInvalidCredentials, "Invalid login credentials"), fallback); got != "Invalid login credentials" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("dial tcp: refused"), fallback); got != fallback {
		t.Errorf("UserMessage(plain) = %q, want fallback", got)
	}
	if got := UserMessage(&AppError{Code: ErrCodeInternal}, fallback); got != fallback {
		t.Errorf("UserMessage(empty message) = %q, want fallback", got)
	}
}
