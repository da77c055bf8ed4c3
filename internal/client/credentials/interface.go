// Package credentials implements the durable store for the current bearer
// token and the cached candidate record. The store is the single
// process-wide observation point for the credential: the HTTP gateway reads
// it on every outbound request, the session service is its only writer.
package credentials

import (
	"context"

	"github.com/oranmed/candidat/internal/client/models"
)

// Store persists the (token, user) pair across process restarts and keeps an
// in-memory copy that stays valid even when the durable write fails.
type Store interface {
	// Save overwrites both values. A failed durable write returns an error
	// wrapping common.ErrStorageUnavailable, but the in-memory copy is
	// updated regardless and remains readable for the process lifetime.
	Save(ctx context.Context, token string, user *models.User) error

	// Load reads the persisted pair into memory. It returns ("", nil, nil)
	// after a fresh start or a prior Clear.
	Load(ctx context.Context) (string, *models.User, error)

	// Clear removes both values. Clearing an empty store is a no-op success.
	Clear(ctx context.Context) error

	// Token returns the in-memory bearer token, "" when absent.
	Token() string

	// User returns the in-memory candidate record, nil when absent.
	User() *models.User
}
