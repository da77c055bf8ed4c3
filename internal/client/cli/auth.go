package cli

import (
	"context"
	"os"

	"github.com/oranmed/candidat/internal/client/models"
)

// getSimpleText, getTextWithDefault and getPassword are indirections used
// to facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
)

// Register collects the full candidate profile, validates it locally, and
// submits it. A successful registration does not authenticate: the session
// moves to awaiting-verification and the user is pointed at the verify
// command.
func (a *App) Register(ctx context.Context) error {
	givenName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	familyName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	if password != confirm {
		printlnFn("Passwords do not match.")
		return nil
	}
	track, err := getSimpleText(a.reader, "Track (medicine/pharmacy/dentistry)", os.Stdout)
	if err != nil {
		return err
	}
	birthDate, err := getSimpleText(a.reader, "Date of birth (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone number", os.Stdout)
	if err != nil {
		return err
	}

	profile := models.RegistrationProfile{
		GivenName:  givenName,
		FamilyName: familyName,
		Email:      email,
		Password:   password,
		Track:      models.Track(track),
		BirthDate:  birthDate,
		Phone:      phone,
	}

	if errs := a.validator.ValidateStruct(profile); errs != nil {
		for _, msg := range errs {
			printlnFn(" -", msg)
		}
		return nil
	}

	msg, err := a.session.Register(ctx, profile)
	if err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	a.lastEmail = email
	printlnFn(msg)
	printlnFn("A verification code was sent to your email. Use 'verify' to enter it.")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.lastEmail, os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", os.Stdout)
	if err != nil {
		return err
	}

	user, msg, err := a.session.Login(ctx, email, password)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	a.lastEmail = email
	if msg != "" {
		printlnFn(msg)
	}
	if user != nil {
		printlnFn("Welcome,", user.FullName()+"!")
	} else {
		printlnFn("Login successful.")
	}
	return nil
}

// Logout clears the stored credential. It always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}
