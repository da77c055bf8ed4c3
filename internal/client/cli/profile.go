package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oranmed/candidat/internal/common"
)

// Profile fetches the candidate record from the server and renders it. An
// expired credential has already forced a logout inside the session service
// by the time the error surfaces here.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.session.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			printlnFn("Your session has expired, please log in again.")
		} else {
			printlnFn("Could not fetch your profile:", err)
		}
		return err
	}

	printlnFn("Candidate profile")
	printlnFn("  Name:      ", user.FullName())
	printlnFn("  Email:     ", user.Email)
	printlnFn("  Track:     ", string(user.Track))
	if user.EmailVerified {
		printlnFn("  Email status: verified")
	} else {
		printlnFn("  Email status: not verified")
	}
	if !user.CreatedAt.IsZero() {
		printlnFn("  Registered:", user.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// Status reports the session state without contacting the server. The
// authenticated check is a credential-presence check and may be stale; the
// token expiry shown next to it is decoded locally for display only and
// decides nothing.
func (a *App) Status(ctx context.Context) error {
	printlnFn("Session state:", string(a.session.State()))

	if user := a.session.CurrentUser(); user != nil {
		printlnFn("Candidate:   ", user.Email)
	}

	token := a.session.Token()
	if token == "" {
		printlnFn("No stored credential.")
		return nil
	}

	if expiry, ok := peekTokenExpiry(token); ok {
		if time.Now().After(expiry) {
			printlnFn(fmt.Sprintf("Stored credential expired at %s (the server has the final say).", expiry.Format(time.RFC3339)))
		} else {
			printlnFn("Stored credential valid until", expiry.Format(time.RFC3339))
		}
	}
	return nil
}

// peekTokenExpiry decodes the bearer token's exp claim without verifying
// the signature. The client has no signing key and does not need one: the
// value is informational, authorization stays with the server.
func peekTokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
