// Package gateway implements the HTTP-JSON transport to the candidate
// portal API. It attaches the current bearer credential to every outgoing
// request and folds transport failures into a small set of errors the
// session layer can classify.
package gateway

import (
	"context"

	"github.com/oranmed/candidat/internal/client/models"
)

// TokenSource supplies the current bearer token for outbound requests.
// The credentials store satisfies it; an empty string means no credential
// is attached.
type TokenSource interface {
	Token() string
}

// Client is the portal API surface used by the session service.
//
// Errors are either a *ServerError (the server answered with a non-2xx
// status and, usually, a message) or wrap ErrUnavailable (no usable
// response). *ServerError for a 401/403 additionally matches
// errors.Is(err, ErrUnauthorized).
type Client interface {
	// Register submits the full candidate profile. Returns the server's
	// confirmation message. Registration never yields a credential.
	Register(ctx context.Context, profile models.RegistrationProfile) (string, error)

	// VerifyEmail submits the one-time code. On success the server issues a
	// bearer token and the verified candidate record.
	VerifyEmail(ctx context.Context, email, code string) (string, *models.User, string, error)

	// ResendVerification re-requests a code for a still-unverified email.
	ResendVerification(ctx context.Context, email string) (string, error)

	// Login exchanges credentials for a bearer token. The user record is
	// nil unless the server chose to include one.
	Login(ctx context.Context, email, password string) (string, *models.User, string, error)

	// GetProfile fetches the authenticated candidate's record. The bearer
	// header is attached automatically from the TokenSource.
	GetProfile(ctx context.Context) (*models.User, error)

	// Close releases idle transport resources.
	Close() error
}
