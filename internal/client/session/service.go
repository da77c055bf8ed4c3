// Package session sequences the candidate identity lifecycle: register,
// verify email, resend code, login, profile fetch, logout. The service owns
// the state machine and is the sole writer of the credentials store; the
// presentation layer observes state changes instead of being navigated.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oranmed/candidat/internal/client/credentials"
	"github.com/oranmed/candidat/internal/client/gateway"
	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/common"
	"github.com/oranmed/candidat/internal/logging"
)

// Fallback messages used when the server answered without one.
const (
	msgRegistrationFailed = "registration could not be completed, please try again"
	msgVerificationFailed = "invalid or expired verification code"
	msgResendFailed       = "could not resend the verification code"
	msgLoginFailed        = "invalid email or password"
	msgSessionExpired     = "your session has expired, please log in again"
)

// Service drives the session state machine. State transitions and store
// writes are serialized behind a mutex; operations themselves may overlap,
// and the last completed write wins.
type Service struct {
	gw    gateway.Client
	store credentials.Store
	log   logging.Logger

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewService(gw gateway.Client, store credentials.Store, log logging.Logger) *Service {
	return &Service{gw: gw, store: store, log: log, state: StateAnonymous}
}

// Subscribe registers fn to be called after every state change. Callbacks
// run outside the state lock and may call back into the service.
func (s *Service) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a credential is currently held. This is a
// presence check, not a validity check: it never contacts the server and may
// be stale until the next profile fetch.
func (s *Service) IsAuthenticated() bool {
	return s.store.Token() != ""
}

// CurrentUser returns the cached candidate record, nil when none. It is a
// display projection only.
func (s *Service) CurrentUser() *models.User {
	return s.store.User()
}

// Token returns the current bearer token, "" when absent.
func (s *Service) Token() string {
	return s.store.Token()
}

// Restore loads any persisted credential. A stored pair makes the session
// optimistically Authenticated; the caller should follow up with
// FetchProfile to confirm, which downgrades the state on rejection.
func (s *Service) Restore(ctx context.Context) error {
	token, _, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not restore stored session", "error", err)
		return err
	}
	if token != "" {
		s.setState(StateAuthenticated)
		s.log.Info(ctx, "restored stored session")
	}
	return nil
}

// Register submits the candidate profile. On success the session moves to
// AwaitingVerification and the server's confirmation message is returned;
// registration never yields a credential. On failure the pre-call state is
// restored and the error wraps ErrRegistrationRejected or ErrNetworkFailure.
func (s *Service) Register(ctx context.Context, profile models.RegistrationProfile) (string, error) {
	prev := s.begin(StateRegistering)

	msg, err := s.gw.Register(ctx, profile)
	if err != nil {
		s.setState(prev)
		if errors.Is(err, gateway.ErrUnavailable) {
			return "", fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
		}
		return "", fmt.Errorf("%w: %s", common.ErrRegistrationRejected, gateway.ServerMessage(err, msgRegistrationFailed))
	}

	s.setState(StateAwaitingVerification)
	s.log.Info(ctx, "registration accepted", "email", profile.Email)
	return msg, nil
}

// VerifyEmail submits the one-time code. On success the issued credential
// and the verified candidate record are persisted and the session becomes
// Authenticated. On failure nothing changes and the error wraps
// ErrVerificationFailed or ErrNetworkFailure.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*models.User, string, error) {
	prev := s.begin(StateAuthenticating)

	token, user, msg, err := s.gw.VerifyEmail(ctx, email, code)
	if err != nil {
		s.setState(prev)
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, "", fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
		}
		return nil, "", fmt.Errorf("%w: %s", common.ErrVerificationFailed, gateway.ServerMessage(err, msgVerificationFailed))
	}
	if token == "" {
		s.setState(prev)
		return nil, "", fmt.Errorf("%w: %s", common.ErrVerificationFailed, msgVerificationFailed)
	}

	s.persist(ctx, token, user)
	s.setState(StateAuthenticated)
	s.log.Info(ctx, "email verified", "email", email)
	return user, msg, nil
}

// ResendVerification re-requests a code for a still-unverified email. It
// never changes the session state and may be called repeatedly.
func (s *Service) ResendVerification(ctx context.Context, email string) (string, error) {
	msg, err := s.gw.ResendVerification(ctx, email)
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			return "", fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
		}
		return "", fmt.Errorf("%w: %s", common.ErrResendFailed, gateway.ServerMessage(err, msgResendFailed))
	}
	s.log.Info(ctx, "verification code resent", "email", email)
	return msg, nil
}

// Login exchanges credentials for a bearer token, persists the pair, and
// moves the session to Authenticated. The login endpoint returns only the
// token, so the candidate record is fetched right after; if that refresh
// fails for a non-auth reason the session stays Authenticated with an empty
// projection until the next successful FetchProfile. The error never reveals
// more than the server's single generic message.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	prev := s.begin(StateAuthenticating)

	token, user, msg, err := s.gw.Login(ctx, email, password)
	if err != nil {
		s.setState(prev)
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, "", fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
		}
		return nil, "", fmt.Errorf("%w: %s", common.ErrAuthenticationFailed, gateway.ServerMessage(err, msgLoginFailed))
	}
	if token == "" {
		s.setState(prev)
		return nil, "", fmt.Errorf("%w: %s", common.ErrAuthenticationFailed, msgLoginFailed)
	}

	s.persist(ctx, token, user)
	s.setState(StateAuthenticated)

	if user == nil {
		fetched, ferr := s.gw.GetProfile(ctx)
		if ferr != nil {
			s.log.Warn(ctx, "profile refresh after login failed", "error", ferr)
		} else {
			user = fetched
			s.persist(ctx, token, user)
		}
	}

	s.log.Info(ctx, "login successful", "email", email)
	return user, msg, nil
}

// FetchProfile refreshes the cached candidate record. A 401/403 answer
// means the stored credential is no longer accepted: the service forces a
// logout itself before surfacing ErrSessionExpired. Any other failure
// leaves the session untouched and wraps ErrProfileUnavailable.
func (s *Service) FetchProfile(ctx context.Context) (*models.User, error) {
	user, err := s.gw.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			s.log.Warn(ctx, "stored credential rejected, logging out")
			s.Logout(ctx)
			return nil, fmt.Errorf("%w: %s", common.ErrSessionExpired, gateway.ServerMessage(err, msgSessionExpired))
		}
		return nil, fmt.Errorf("%w: %w", common.ErrProfileUnavailable, err)
	}

	s.persist(ctx, s.store.Token(), user)
	s.setState(StateAuthenticated)
	return user, nil
}

// Logout clears the stored credential and returns the session to Anonymous.
// It always succeeds: a failed durable delete is logged, the in-memory
// credential is gone either way.
func (s *Service) Logout(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn(ctx, "could not clear stored credentials", "error", err)
	}
	s.setState(StateAnonymous)
	s.log.Info(ctx, "logged out")
}

// persist writes the pair through the store. A durable-write failure is not
// fatal to the operation: the in-memory copy is already updated, so the
// session stays usable for this process and the failure is only logged.
func (s *Service) persist(ctx context.Context, token string, user *models.User) {
	if err := s.store.Save(ctx, token, user); err != nil {
		s.log.Warn(ctx, "credentials not persisted durably", "error", err)
	}
}

// begin enters a transient in-flight state and returns the state to fall
// back to if the call fails.
func (s *Service) begin(transient State) State {
	s.mu.Lock()
	prev := s.state
	s.state = transient
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(transient)
	}
	return prev
}

func (s *Service) setState(next State) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}
