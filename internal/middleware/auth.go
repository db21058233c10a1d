package middleware

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// AccountIDKey is the context key for storing the authenticated account ID.
	AccountIDKey contextKey = "account_id"
	// AccountNameKey is the context key for storing the caller's display name.
	AccountNameKey contextKey = "account_name"
)

// GetAccountID extracts the account ID from the context.
// Returns empty string if not found.
func GetAccountID(ctx context.Context) string {
	id, _ := ctx.Value(AccountIDKey).(string)
	return id
}

// GetAccountName extracts the caller's display name from the context.
// Returns empty string if not found.
func GetAccountName(ctx context.Context) string {
	name, _ := ctx.Value(AccountNameKey).(string)
	return name
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, id.AccountID)
	return context.WithValue(ctx, AccountNameKey, id.Name)
}

// RequireAuth returns an interceptor that resolves the caller with authn and
// rejects the request when no identity can be established.
func RequireAuth(authn auth.Authenticator) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id, err := authn.Authenticate(ctx, req.Header())
			if err != nil {
				slog.Warn("Authentication failed",
					"procedure", req.Spec().Procedure,
					"peer", req.Peer().Addr,
					"error", err,
				)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			// Call the next handler with enriched context
			return next(WithIdentity(ctx, id), req)
		}
	}
}
