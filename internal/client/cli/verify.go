package cli

import (
	"context"
	"os"
)

// Verify submits the one-time code received by email. On success the
// session is authenticated and the issued credential stored.
func (a *App) Verify(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.lastEmail, os.Stdout)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Verification code", os.Stdout)
	if err != nil {
		return err
	}

	user, msg, err := a.session.VerifyEmail(ctx, email, code)
	if err != nil {
		printlnFn("Verification failed:", err)
		return err
	}

	a.lastEmail = email
	if msg != "" {
		printlnFn(msg)
	}
	if user != nil {
		printlnFn("Welcome,", user.FullName()+"!")
	}
	return nil
}

// Resend requests a fresh verification code for a still-unverified email.
// It never changes the session state.
func (a *App) Resend(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.lastEmail, os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.session.ResendVerification(ctx, email)
	if err != nil {
		printlnFn("Resend failed:", err)
		return err
	}

	a.lastEmail = email
	if msg != "" {
		printlnFn(msg)
	} else {
		printlnFn("A new verification code was sent.")
	}
	return nil
}
