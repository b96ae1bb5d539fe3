package composables

import (
	"context"

	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

// WithScope returns a new context carrying the company-scope session.
func WithScope(ctx context.Context, s *scope.Session) context.Context {
	return context.WithValue(ctx, constants.ScopeKey, s)
}

// UseScope returns the company-scope session from the context. Calling it
// outside a request that went through the authorize middleware is a
// programming error and panics rather than returning a default.
func UseScope(ctx context.Context) *scope.Session {
	s, ok := TryUseScope(ctx)
	if !ok {
		panic("scope session not found in context")
	}
	return s
}

// TryUseScope attempts to fetch the scope session without panicking.
func TryUseScope(ctx context.Context) (*scope.Session, bool) {
	s, ok := ctx.Value(constants.ScopeKey).(*scope.Session)
	return s, ok
}
