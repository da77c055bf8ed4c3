// Package common defines shared constants and sentinel errors used across
// the candidate portal client. Callers should use errors.Is to match these
// values; operation-specific messages from the server are attached by
// wrapping with %w.
package common

import "errors"

var (
	// Session lifecycle errors.
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrVerificationFailed   = errors.New("verification failed")
	ErrResendFailed         = errors.New("resend failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSessionExpired       = errors.New("session expired")
	ErrProfileUnavailable   = errors.New("profile unavailable")

	// Infrastructure errors.
	ErrNetworkFailure     = errors.New("network failure")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
