package auth

// Package auth contains domain-level types for authentication, sessions and post-login routing.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents the profile attribute that decides where a user lands after sign-in.
// Keep string form for easy persistence in sessions and the profiles table.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleApplicant Role = "applicant"
)

// ParseRole normalizes a raw role attribute. Anything unrecognized is an applicant.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleRecruiter:
		return RoleRecruiter
	default:
		return RoleApplicant
	}
}

// IsElevated reports whether the role belongs to an operator (admin or recruiter).
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleRecruiter
}

// RoutingTarget is the path a user is sent to after authenticating.
type RoutingTarget string

const (
	// RouteLanding is the public entry point; unauthenticated users are sent here.
	RouteLanding RoutingTarget = "/"
	// RouteDashboard is the operator dashboard for elevated roles.
	RouteDashboard RoutingTarget = "/dashboard"
	// RouteApplicant is the onboarding flow for everyone else.
	RouteApplicant RoutingTarget = "/applicant"
)

// TargetFor returns the post-login destination for a role.
func TargetFor(r Role) RoutingTarget {
	if r.IsElevated() {
		return RouteDashboard
	}
	return RouteApplicant
}

// Identity represents the authenticated principal returned by the identity service.
// Adapters map provider-specific payloads into this shape.
type Identity struct {
	UserID    string // stable user identifier issued by the provider
	FirstName string
	LastName  string
	Email     string
	// Claims carries the raw provider claims (JWT or user metadata) for claim-based role resolution.
	Claims    map[string]any
	ExpiresAt time.Time // absolute expiry of the provider token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier stored in the session_id cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsElevated returns true if the session belongs to an operator.
func (s Session) IsElevated() bool { return s.Role.IsElevated() }

// Target returns where this session should be routed.
func (s Session) Target() RoutingTarget { return TargetFor(s.Role) }

// DisplayName returns the best human-readable name for the session owner.
func (s Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name != "" {
		return name
	}
	return s.Email
}
