package auth

import "context"

// Session identifies the authenticated caller of the current request.
// It is derived from the bearer token on every request and threaded
// through the request context; handlers must never cache it across
// requests.
type Session struct {
	Subject string // user ID embedded in the token
	TokenID string // jti of the presented token
	Token   string // raw token string, needed for logout/refresh
}

type contextKey string

const sessionKey = contextKey("authSession")

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session from ctx. The second return is
// false on unauthenticated requests.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
