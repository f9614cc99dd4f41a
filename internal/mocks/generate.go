// Package mocks provides gomock implementations of the auth ports.
//
// The mocks are generated with go.uber.org/mock (mockgen) and give tests a fluent API for
// declaring expected calls and asserting that nothing else reaches the identity service.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	idp := mocks.NewMockIdentityProvider(ctrl)
//	idp.EXPECT().SignInWithPassword(gomock.Any(), "a@b.co", "secret123").Return(identity, nil)
package mocks

// Generate mock for IdentityProvider interface from internal/ports package.
// This creates MockIdentityProvider with methods: SignInWithPassword, SignUp
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_provider_mock.go github.com/bnastase-alt/rider-onboarding/internal/ports IdentityProvider

// Generate mock for RoleResolver interface from internal/ports package.
// This creates MockRoleResolver with methods: ResolveRole
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=role_resolver_mock.go github.com/bnastase-alt/rider-onboarding/internal/ports RoleResolver
