// Package services contains application services for the terminal client.
// This file defines the authentication service: register, sign-in, profile
// update, sign-out and the liveness check, all acting on the session mounted
// in the context.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ocrdesk/internal/client/client"
	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/session"
)

// AuthService defines authentication operations for the CLI.
//
// Login and Logout expect ctx to carry a session (see session.NewContext);
// they panic with session.ErrOutsideProvider otherwise.
type AuthService interface {
	Register(ctx context.Context, req client.RegisterRequest) (*session.UserProfile, error)
	Login(ctx context.Context, username, password string) (*session.UserProfile, error)
	UpdateProfile(ctx context.Context, upd client.ProfileUpdate) (*session.UserProfile, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  session.CredentialStore
	logger logging.Logger
}

// NewAuthService constructs an AuthService. store must be the same store
// the session persists its credential to.
func NewAuthService(c client.Client, store session.CredentialStore, logger logging.Logger) AuthService {
	return &authService{client: c, store: store, logger: logger.With("component", "auth")}
}

// Register creates an account on the server. It does not sign in.
func (a *authService) Register(ctx context.Context, req client.RegisterRequest) (*session.UserProfile, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrorValidation)
	}

	u, err := a.client.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

// Login authenticates against the server and hands the result to the
// session, which persists the token and publishes the new user.
func (a *authService) Login(ctx context.Context, username, password string) (*session.UserProfile, error) {
	sess := session.Use(ctx)

	res, err := a.client.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := sess.Login(ctx, res); err != nil {
		// Signed in for this run even if the token could not be saved.
		if errors.Is(err, session.ErrNoUser) || errors.Is(err, session.ErrClosed) {
			return nil, fmt.Errorf("login error: %w", err)
		}
		a.logger.Warn(ctx, "signed in but credential was not saved", "error", err)
	}
	return res.User.Clone(), nil
}

// UpdateProfile saves upd on the server for the signed-in user and
// republishes the returned profile. The stored token is left as it is.
func (a *authService) UpdateProfile(ctx context.Context, upd client.ProfileUpdate) (*session.UserProfile, error) {
	sess := session.Use(ctx)
	if !sess.Snapshot().IsAuthenticated {
		return nil, fmt.Errorf("update profile error: %w", client.ErrUnauthorized)
	}

	token, err := a.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("update profile error: %w", err)
	}

	u, err := a.client.UpdateProfile(ctx, token, upd)
	if err != nil {
		return nil, fmt.Errorf("update profile error: %w", err)
	}

	if err := sess.Login(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile error: %w", err)
	}
	return u.Clone(), nil
}

// Logout revokes the stored token on the server when there is one and then
// signs the session out. The local sign-out happens even when the server
// cannot be reached.
func (a *authService) Logout(ctx context.Context) error {
	sess := session.Use(ctx)

	token, err := a.store.Get(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not read credential for remote logout", "error", err)
	}
	if token != "" {
		if err := a.client.Logout(ctx, token); err != nil {
			a.logger.Info(ctx, "remote logout failed", "error", err)
		}
	}

	if err := sess.Logout(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
