// Package services contains server-side business logic. AccountService
// registers accounts, signs them in with short-lived JWT access tokens and
// revokes those tokens on logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/cryptox"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/server/auth"
	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/repomanager"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 150
	minPasswordLen = 6
)

type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// ProfileUpdate carries the editable profile fields. A nil field is left
// unchanged.
type ProfileUpdate struct {
	Email *string
	Name  *string
}

type LoginResult struct {
	Token  string
	Claims *auth.Claims
	User   *models.User
}

// dummyCredentials is checked against when the username is unknown, so a
// failed login costs the same either way.
var dummyCredentials = sync.OnceValues(func() ([]byte, []byte) {
	return cryptox.NewVerifier(common.GenerateRandByteArray(16))
})

type AccountService struct {
	repos  repomanager.RepositoryManager
	tokens *auth.JWTManager
	logger logging.Logger
	now    func() time.Time
}

func NewAccountService(repos repomanager.RepositoryManager, tokens *auth.JWTManager, logger logging.Logger) *AccountService {
	return &AccountService{repos: repos, tokens: tokens, logger: logger, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	password := []byte(in.Password)
	salt, verifier := cryptox.NewVerifier(password)
	common.WipeByteArray(password)

	user, err := s.repos.Users().Create(ctx, &models.User{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Salt:     salt,
		Verifier: verifier,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "create user failed", "username", in.Username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func validateRegistration(in RegisterInput) error {
	if n := utf8.RuneCountInString(in.Username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", common.ErrorValidation, minUsernameLen, maxUsernameLen)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return fmt.Errorf("%w: invalid email", common.ErrorValidation)
		}
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLen)
	}
	return nil
}

// Login checks the password and issues an access token. Unknown users and
// wrong passwords both yield common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user, err := s.repos.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			salt, verifier := dummyCredentials()
			cryptox.CheckPassword(pw, salt, verifier)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "lookup user failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.CheckPassword(pw, user.Salt, user.Verifier) {
		return nil, common.ErrorUnauthorized
	}

	token, claims, err := s.tokens.Sign(s.now(), user.ID)
	if err != nil {
		s.logger.Error(ctx, "sign token failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, Claims: claims, User: user}, nil
}

// Authenticate parses token and rejects it if it was revoked by a logout.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repos.RevokedTokens().IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed", "error", err)
		return nil, common.ErrorInternal
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return claims, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "load profile failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile changes the email and/or display name of userID. An email
// used by another account yields common.ErrorAlreadyExists.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
			}
		}
		user.Email = email
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}

	updated, err := s.repos.Users().Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) || errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "update profile failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "profile updated", "user_id", userID)
	return updated, nil
}

// Logout revokes the token described by claims until it expires, and drops
// revocations that are no longer needed.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		repo := tx.RevokedTokens()
		if err := repo.Revoke(ctx, &models.RevokedToken{ID: claims.ID, UserID: claims.UserID, ExpiresAt: expires}); err != nil {
			return err
		}
		purged, err := repo.PurgeExpired(ctx, s.now())
		if err != nil {
			return err
		}
		if purged > 0 {
			s.logger.Debug(ctx, "purged revoked tokens", "count", purged)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "logout failed", "user_id", claims.UserID, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}
