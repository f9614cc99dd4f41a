package httpx

import (
	"context"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
)

type sessionCtxKey struct{}

// WithSession attaches the signed-in user's session to ctx. A nil session is ignored.
func WithSession(ctx context.Context, sess *domainauth.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFromContext returns the session placed by RequireSession, if any.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(*domainauth.Session)
	return sess, ok && sess != nil
}

// CurrentSession is SessionFromContext without the flag.
func CurrentSession(ctx context.Context) *domainauth.Session {
	sess, _ := SessionFromContext(ctx)
	return sess
}
