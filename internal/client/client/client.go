package client

import (
	"context"

	"github.com/dmitrijs2005/ocrdesk/internal/session"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

// ProfileUpdate carries the profile fields to change. Nil fields are left
// as they are on the server.
type ProfileUpdate struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
}

type Client interface {
	Close() error
	Register(ctx context.Context, req RegisterRequest) (*session.UserProfile, error)
	Login(ctx context.Context, username, password string) (*session.AuthResult, error)
	FetchProfile(ctx context.Context, token string) (*session.UserProfile, error)
	UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) (*session.UserProfile, error)
	Logout(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}
