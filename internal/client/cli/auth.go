package cli

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/dmitrijs2005/ocrdesk/internal/client/client"
	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errAlreadySignedIn  = errors.New("already signed in, log out first")
	errPasswordMismatch = errors.New("passwords don't match")
	errNotSignedIn      = errors.New("not signed in")
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

func validateRegistration(username, email string, password, confirm []byte) error {
	if len(username) < minUsernameLen {
		return fmt.Errorf("username must be at least %d characters: %w", minUsernameLen, common.ErrorValidation)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("invalid email %q: %w", email, common.ErrorValidation)
		}
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, common.ErrorValidation)
	}
	if string(password) != string(confirm) {
		return errPasswordMismatch
	}
	return nil
}

// Register prompts for the account details and creates the account. It
// does not sign in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter full name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := validateRegistration(username, email, password, confirm); err != nil {
		return err
	}

	u, err := a.authService.Register(ctx, client.RegisterRequest{
		Username: username,
		Email:    email,
		Name:     name,
		Password: string(password),
	})
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Account %s created, you can log in now", u.Username))
	return nil
}

// Login prompts for credentials and signs the session in. The session
// watcher announces the result.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn(ctx) {
		return errAlreadySignedIn
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Login(ctx, username, string(password)); err != nil {
		return err
	}
	return nil
}

// EditProfile prompts for a new display name and email. A blank answer
// keeps the current value.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.isLoggedIn(ctx) {
		return errNotSignedIn
	}

	name, err := getSimpleText(a.reader, "Enter full name (blank keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (blank keeps current)", os.Stdout)
	if err != nil {
		return err
	}

	var upd client.ProfileUpdate
	if name = strings.TrimSpace(name); name != "" {
		upd.Name = &name
	}
	if email = strings.TrimSpace(email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("invalid email %q: %w", email, common.ErrorValidation)
		}
		upd.Email = &email
	}
	if upd.Name == nil && upd.Email == nil {
		printlnFn("Nothing to change")
		return nil
	}

	if _, err := a.authService.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	printlnFn("Profile updated")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.authService.Logout(ctx)
}

func (a *App) WhoAmI(ctx context.Context) error {
	snap := session.Use(ctx).Snapshot()
	if !snap.IsAuthenticated {
		printlnFn("Not signed in")
		return nil
	}

	u := snap.User
	printlnFn("User:    ", u.DisplayName())
	if u.Username != "" {
		printlnFn("Username:", u.Username)
	}
	if u.Email != "" {
		printlnFn("Email:   ", u.Email)
	}
	printlnFn("ID:      ", u.ID)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	snap := session.Use(ctx).Snapshot()

	mode := a.currentMode()
	if mode == "" {
		mode = "unknown"
	}

	printlnFn("Session:", snap.State().String())
	printlnFn("Server: ", a.config.ServerURL, "("+string(mode)+")")
	return nil
}

// userMessage turns a command error into something to show at the prompt.
func userMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, client.ErrUnauthorized):
		return "invalid username or password"
	case errors.Is(err, client.ErrConflict):
		return "an account with this username or email already exists"
	default:
		return strings.TrimSpace(err.Error())
	}
}
