package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the caller of a request as asserted by the chat platform.
type Identity struct {
	AccountID string
	Name      string
}

// Authenticator defines how the caller of a request is identified.
// This abstraction allows swapping between signed tokens and a trusted
// development mode without changing the interceptors.
type Authenticator interface {
	// Authenticate resolves the caller from the request headers.
	// It returns ErrMissingToken or ErrInvalidToken when no identity can be established.
	Authenticate(ctx context.Context, header http.Header) (*Identity, error)
}

// Headers read by DevAuthenticator.
const (
	AccountIDHeader   = "X-Account-Id"
	AccountNameHeader = "X-Account-Name"
)

// DevAuthenticator trusts the X-Account-Id header and falls back to a fixed
// account. It is meant for local development only.
type DevAuthenticator struct {
	DefaultAccountID string
	DefaultName      string
}

// Ensure DevAuthenticator implements Authenticator
var _ Authenticator = DevAuthenticator{}

func (d DevAuthenticator) Authenticate(_ context.Context, header http.Header) (*Identity, error) {
	id := strings.TrimSpace(header.Get(AccountIDHeader))
	name := strings.TrimSpace(header.Get(AccountNameHeader))
	if id == "" {
		id, name = d.DefaultAccountID, d.DefaultName
	}
	if id == "" {
		return nil, ErrMissingToken
	}
	if name == "" {
		name = id
	}
	return &Identity{AccountID: id, Name: name}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header http.Header) (string, error) {
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
