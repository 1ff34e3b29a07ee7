package common

import "context"

// Session holds per-request identity and the auth headers to forward to the
// finance backend. Handlers attach it; the backend client reads it.
type Session struct {
	Username       string
	BackendHeaders map[string]string
}

type contextKey int

const sessionKey contextKey = iota

// WithSession stores a Session in the request context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext retrieves the Session from context, or nil if absent.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// ResolveBackendHeaders returns the forwarded backend headers for this request, or nil.
func ResolveBackendHeaders(ctx context.Context) map[string]string {
	if s := SessionFromContext(ctx); s != nil {
		return s.BackendHeaders
	}
	return nil
}

// ResolveUsername returns the logged-in username, or "anonymous" when the login gate is off.
func ResolveUsername(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil && s.Username != "" {
		return s.Username
	}
	return "anonymous"
}
