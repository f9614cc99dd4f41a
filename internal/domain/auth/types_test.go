package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"admin", RoleAdmin},
		{" Recruiter ", RoleRecruiter},
		{"applicant", RoleApplicant},
		{"", RoleApplicant},
		{"superuser", RoleApplicant},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.raw))
		})
	}
}

func TestTargetFor(t *testing.T) {
	assert.Equal(t, RouteDashboard, TargetFor(RoleAdmin))
	assert.Equal(t, RouteDashboard, TargetFor(RoleRecruiter))
	assert.Equal(t, RouteApplicant, TargetFor(RoleApplicant))
	assert.Equal(t, RouteApplicant, TargetFor(Role("")))
}

func TestSession_DisplayName(t *testing.T) {
	s := Session{Email: "rider@example.com"}
	assert.Equal(t, "rider@example.com", s.DisplayName())

	s.FirstName = "Ada"
	s.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", s.DisplayName())
}
