package authroles

// Package authroles resolves user roles from identity-provider claims.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// DefaultClaimExpr reads the role GoTrue stores in app_metadata.
const DefaultClaimExpr = "app_metadata.role"

// ClaimResolver implements ports.RoleResolver by evaluating a JMESPath expression over Identity.Claims.
// A string result is parsed as a role; a list result yields its highest-ranked role.
// A missing claim resolves to applicant.
type ClaimResolver struct {
	expr string
}

var _ ports.RoleResolver = (*ClaimResolver)(nil)

// NewClaimResolver compiles expr once to reject bad configuration at startup.
func NewClaimResolver(expr string) (*ClaimResolver, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultClaimExpr
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile role claim expression %q: %w", expr, err)
	}
	return &ClaimResolver{expr: expr}, nil
}

// ResolveRole evaluates the expression against the identity claims.
func (r *ClaimResolver) ResolveRole(_ context.Context, id domainauth.Identity) (domainauth.Role, error) {
	if id.Claims == nil {
		return "", errors.New("identity carries no claims")
	}
	out, err := jmespath.Search(r.expr, id.Claims)
	if err != nil {
		return "", fmt.Errorf("evaluate role claim: %w", err)
	}

	switch v := out.(type) {
	case nil:
		return domainauth.RoleApplicant, nil
	case string:
		return domainauth.ParseRole(v), nil
	case []any:
		return highestRole(v), nil
	default:
		return "", fmt.Errorf("role claim has unsupported type %T", out)
	}
}

func highestRole(vals []any) domainauth.Role {
	best := domainauth.RoleApplicant
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch domainauth.ParseRole(s) {
		case domainauth.RoleAdmin:
			return domainauth.RoleAdmin
		case domainauth.RoleRecruiter:
			best = domainauth.RoleRecruiter
		}
	}
	return best
}
