package session

import "context"

// UserProfile identifies the signed-in principal. The session does not
// interpret the fields.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Clone returns a copy of u, or nil for a nil receiver.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName picks the most human-friendly non-empty field.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// AuthResult is what a successful sign-in returns: the user and, usually, a
// fresh bearer credential.
type AuthResult struct {
	User  *UserProfile `json:"user"`
	Token string       `json:"token,omitempty"`
}

// LoginPayload is accepted by Session.Login. It is implemented by
// *UserProfile (no credential) and *AuthResult.
type LoginPayload interface {
	loginUser() *UserProfile
	loginToken() string
}

func (u *UserProfile) loginUser() *UserProfile { return u }
func (u *UserProfile) loginToken() string      { return "" }

func (r *AuthResult) loginUser() *UserProfile {
	if r == nil {
		return nil
	}
	return r.User
}

func (r *AuthResult) loginToken() string {
	if r == nil {
		return ""
	}
	return r.Token
}

// CredentialStore persists the single bearer credential. Get returns
// ("", nil) when nothing is stored. Implementations have no compare-and-swap:
// the last writer wins.
type CredentialStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// IdentityGateway resolves a credential into the current user's profile.
// Any returned error means the credential is not usable; the session does
// not look at what kind of error it is.
type IdentityGateway interface {
	FetchProfile(ctx context.Context, credential string) (*UserProfile, error)
}

// IdentityGatewayFunc adapts a function to IdentityGateway.
type IdentityGatewayFunc func(ctx context.Context, credential string) (*UserProfile, error)

func (f IdentityGatewayFunc) FetchProfile(ctx context.Context, credential string) (*UserProfile, error) {
	return f(ctx, credential)
}
