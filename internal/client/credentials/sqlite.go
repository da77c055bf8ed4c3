package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/common"
	"github.com/oranmed/candidat/internal/dbx"
)

// Fixed keys in the local credentials table.
const (
	tokenKey = "token"
	userKey  = "user"
)

// SQLiteStore keeps the pair in a local SQLite table plus an in-memory copy
// guarded by a RWMutex, so the gateway's outbound hook never touches the DB.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, token string, user *models.User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsert(ctx, tx, tokenKey, []byte(token)); err != nil {
			return err
		}
		if user == nil {
			_, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, userKey)
			return err
		}
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return upsert(ctx, tx, userKey, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (string, *models.User, error) {
	tokenValue, err := s.get(ctx, tokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if len(tokenValue) == 0 {
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.mu.Unlock()
		return "", nil, nil
	}

	var user *models.User
	userValue, err := s.get(ctx, userKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if len(userValue) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(userValue, user); err != nil {
			// A corrupt cached record must not lock the candidate out:
			// keep the token and refetch the profile later.
			user = nil
		}
	}

	s.mu.Lock()
	s.token = string(tokenValue)
	s.user = user
	s.mu.Unlock()

	return string(tokenValue), user, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SQLiteStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *SQLiteStore) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func upsert(ctx context.Context, tx dbx.DBTX, key string, value []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}
