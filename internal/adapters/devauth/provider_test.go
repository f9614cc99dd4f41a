package devauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	prov, err := NewProvider(Config{
		UserID:    "dev-user",
		Email:     "dev@example.com",
		Password:  "password123",
		FirstName: "Dev",
		LastName:  "Rider",
		Role:      "admin",
	})
	require.NoError(t, err)
	return prov
}

func TestProvider_SignIn(t *testing.T) {
	prov := newTestProvider(t)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return fixed }

	id, err := prov.SignInWithPassword(context.Background(), " DEV@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.UserID)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, fixed.Add(8*time.Hour), id.ExpiresAt)
	assert.Equal(t, map[string]any{"role": "admin"}, id.Claims["app_metadata"])
}

func TestProvider_SignIn_WrongPassword(t *testing.T) {
	prov := newTestProvider(t)

	_, err := prov.SignInWithPassword(context.Background(), "dev@example.com", "nope")
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderInvalidCredentials, pe.Kind)

	_, err = prov.SignInWithPassword(context.Background(), "ghost@example.com", "password123")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderInvalidCredentials, pe.Kind)
}

func TestProvider_SignUpThenSignIn(t *testing.T) {
	prov := newTestProvider(t)
	ctx := context.Background()

	in := ports.SignUpInput{Email: "new@example.com", Password: "longenough", FirstName: "New", LastName: "Rider"}
	require.NoError(t, prov.SignUp(ctx, in))

	id, err := prov.SignInWithPassword(ctx, "new@example.com", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.Equal(t, "New", id.FirstName)
	assert.Equal(t, map[string]any{"role": "applicant"}, id.Claims["app_metadata"])

	err = prov.SignUp(ctx, in)
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderUserExists, pe.Kind)
}

func TestProvider_ConcurrentSignUp(t *testing.T) {
	prov := newTestProvider(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- prov.SignUp(ctx, ports.SignUpInput{Email: "race@example.com", Password: "longenough"})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Password: "x"})
	assert.EqualError(t, err, "dev auth: Email is required")

	_, err = NewProvider(Config{Email: "a@b.co"})
	assert.EqualError(t, err, "dev auth: Password is required")

	prov, err := NewProvider(Config{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	id, err := prov.SignInWithPassword(context.Background(), "a@b.co", "x")
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID, "user id defaults to a generated uuid")
}
