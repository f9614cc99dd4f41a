package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/mocks"
	authmocks "github.com/bnastase-alt/rider-onboarding/internal/mocks/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

func validSignUp() Credentials {
	return Credentials{
		Email:           "new@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		FirstName:       "Grace",
		LastName:        "Hopper",
	}
}

func newTestFormService(
	t *testing.T,
	verifier *authmocks.MockCaptchaVerifier,
	bypass bool,
	provider ports.IdentityProvider,
) *AuthFormService {
	t.Helper()
	captcha, err := NewCaptchaService(CaptchaServiceOptions{Verifier: verifier, Bypass: bypass})
	require.NoError(t, err)
	auth := newTestAuthService(t, AuthServiceOptions{Provider: provider})
	svc, err := NewAuthFormService(AuthFormServiceOptions{Captcha: captcha, Auth: auth})
	require.NoError(t, err)
	return svc
}

func TestParseFormMode(t *testing.T) {
	assert.Equal(t, ModeSignUp, ParseFormMode(" SignUp "))
	assert.Equal(t, ModeSignIn, ParseFormMode("signin"))
	assert.Equal(t, ModeSignIn, ParseFormMode("bogus"))
	assert.Equal(t, ModeSignIn, ModeSignUp.Toggled())
	assert.Equal(t, ModeSignUp, ModeSignIn.Toggled())
}

func TestAuthForm_TogglePreservesEmailOnly(t *testing.T) {
	var notified []FormMode
	form := AuthForm{
		Mode:     ModeSignUp,
		Values:   validSignUp(),
		OnToggle: func(m FormMode) { notified = append(notified, m) },
	}

	form.Toggle()

	assert.Equal(t, ModeSignIn, form.Mode)
	assert.Equal(t, Credentials{Email: "new@example.com"}, form.Values)
	assert.Equal(t, []FormMode{ModeSignIn}, notified)

	form.Toggle()
	assert.Equal(t, ModeSignUp, form.Mode)
	assert.Equal(t, "new@example.com", form.Values.Email)
}

func TestSchemas(t *testing.T) {
	tests := []struct {
		name       string
		mode       FormMode
		creds      Credentials
		wantFields []string
	}{
		{name: "sign-in valid", mode: ModeSignIn, creds: Credentials{Email: "a@b.co", Password: "12345678"}},
		{
			name:       "sign-in bad email and short password",
			mode:       ModeSignIn,
			creds:      Credentials{Email: "not-an-email", Password: "short"},
			wantFields: []string{"email", "password"},
		},
		{name: "sign-in ignores names", mode: ModeSignIn, creds: Credentials{Email: "a@b.co", Password: "12345678"}},
		{name: "sign-up valid", mode: ModeSignUp, creds: validSignUp()},
		{
			name: "sign-up confirm mismatch",
			mode: ModeSignUp,
			creds: func() Credentials {
				c := validSignUp()
				c.ConfirmPassword = "password124"
				return c
			}(),
			wantFields: []string{"confirm_password"},
		},
		{
			name: "sign-up short names",
			mode: ModeSignUp,
			creds: func() Credentials {
				c := validSignUp()
				c.FirstName, c.LastName = "Al", " Bo "
				return c
			}(),
			wantFields: []string{"first_name", "last_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.mode.Schema()(tt.creds)
			got := make([]string, 0, len(errs))
			for k := range errs {
				got = append(got, k)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestSubmit_MissingTokenMakesNoNetworkCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockIdentityProvider(ctrl) // no expectations: any call fails the test
	verifier := &authmocks.MockCaptchaVerifier{Verdict: ports.CaptchaVerdict{Success: true}}
	svc := newTestFormService(t, verifier, false, provider)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Form: AuthForm{Mode: ModeSignIn, Values: Credentials{Email: "a@b.co", Password: "12345678"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCaptcha(err))
	assert.Equal(t, MsgCaptchaMissing, apperrors.UserMessage(err, ""))
	assert.True(t, res.ResetCaptcha)
	assert.Zero(t, verifier.CallCount())
}

func TestSubmit_CaptchaRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockIdentityProvider(ctrl)
	verifier := &authmocks.MockCaptchaVerifier{}
	svc := newTestFormService(t, verifier, false, provider)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Form:         AuthForm{Mode: ModeSignIn, Values: Credentials{Email: "a@b.co", Password: "12345678"}},
		CaptchaToken: "tok",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCaptcha(err))
	assert.True(t, res.ResetCaptcha)
	assert.Equal(t, 1, verifier.CallCount())
}

func TestSubmit_ConfirmMismatchNeverReachesIdentityService(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockIdentityProvider(ctrl)
	provider.EXPECT().SignUp(gomock.Any(), gomock.Any()).Times(0)
	svc := newTestFormService(t, nil, true, provider)

	values := validSignUp()
	values.ConfirmPassword = "different1"
	res, err := svc.Submit(context.Background(), SubmitInput{Form: AuthForm{Mode: ModeSignUp, Values: values}})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Passwords do not match.", res.FieldErrors["confirm_password"])
	assert.Equal(t, res.FieldErrors, apperrors.GetFields(err))
	assert.True(t, res.ResetCaptcha)
}

func TestSubmit_SignInApplicant(t *testing.T) {
	provider := authmocks.NewMockIdentityProvider()
	verifier := &authmocks.MockCaptchaVerifier{Verdict: ports.CaptchaVerdict{Success: true}}
	svc := newTestFormService(t, verifier, false, provider)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Form:         AuthForm{Mode: ModeSignIn, Values: Credentials{Email: "a@b.co", Password: "12345678"}},
		CaptchaToken: "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RouteApplicant, res.Target)
	require.NotNil(t, res.Session)
	assert.False(t, res.ResetCaptcha)
	assert.True(t, svc.CaptchaRequired())
}

func TestSubmit_SignUpRoutesToLanding(t *testing.T) {
	provider := authmocks.NewMockIdentityProvider()
	svc := newTestFormService(t, nil, true, provider)

	res, err := svc.Submit(context.Background(), SubmitInput{Form: AuthForm{Mode: ModeSignUp, Values: validSignUp()}})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RouteLanding, res.Target)
	assert.Equal(t, MsgSignUpSuccess, res.Message)
	assert.Nil(t, res.Session)
	_, signUps := provider.Calls()
	assert.Equal(t, 1, signUps)
	assert.False(t, svc.CaptchaRequired())
}

func TestSubmit_RateLimitedMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockIdentityProvider(ctrl)
	provider.EXPECT().SignInWithPassword(gomock.Any(), "a@b.co", "12345678").
		Return(domainauth.Identity{}, &ports.ProviderError{Kind: ports.ProviderRateLimited, Status: 429})
	svc := newTestFormService(t, nil, true, provider)

	res, err := svc.Submit(context.Background(), SubmitInput{
		Form: AuthForm{Mode: ModeSignIn, Values: Credentials{Email: "a@b.co", Password: "12345678"}},
	})
	require.Error(t, err)
	assert.Equal(t, MsgRateLimited, apperrors.UserMessage(err, ""))
	assert.True(t, res.ResetCaptcha)
}
