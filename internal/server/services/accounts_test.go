package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/server/auth"
	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/users"
)

func newService(t *testing.T, rm repomanager.RepositoryManager) *AccountService {
	t.Helper()
	return NewAccountService(rm, auth.NewJWTManager([]byte("k"), time.Hour), logging.Discard())
}

func registerAlice(t *testing.T, s *AccountService) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Username: "  alice ",
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "secret-password",
	})
	require.NoError(t, err)
	return u
}

// brokenRepos fails every repository call.
type brokenRepos struct {
	repomanager.MemoryRepositoryManager
	err error
}

type brokenUsers struct{ err error }

func (b brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, b.err }
func (b brokenUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, b.err
}
func (b brokenUsers) GetByID(context.Context, string) (*models.User, error) { return nil, b.err }
func (b brokenUsers) Update(context.Context, *models.User) (*models.User, error) {
	return nil, b.err
}

type brokenRevoked struct{ err error }

func (b brokenRevoked) Revoke(context.Context, *models.RevokedToken) error { return b.err }
func (b brokenRevoked) IsRevoked(context.Context, string) (bool, error)    { return false, b.err }
func (b brokenRevoked) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, b.err
}

func (b *brokenRepos) Users() users.Repository                 { return brokenUsers{b.err} }
func (b *brokenRepos) RevokedTokens() revokedtokens.Repository { return brokenRevoked{b.err} }
func (b *brokenRepos) WithTx(ctx context.Context, fn func(context.Context, repomanager.RepositoryManager) error) error {
	return fn(ctx, b)
}

func TestRegister(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())

	u := registerAlice(t, s)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.Len(t, u.Salt, 32)
	assert.NotEmpty(t, u.Verifier)

	_, err := s.Register(context.Background(), RegisterInput{Username: "alice", Password: "another-one"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "al", Password: "secret1"}},
		{"blank username", RegisterInput{Username: "    ", Password: "secret1"}},
		{"bad email", RegisterInput{Username: "alice", Email: "nope", Password: "secret1"}},
		{"short password", RegisterInput{Username: "alice", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_RepoError(t *testing.T) {
	s := newService(t, &brokenRepos{err: errors.New("db down")})

	_, err := s.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	u := registerAlice(t, s)

	res, err := s.Login(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, u.ID, res.Claims.UserID)

	claims, err := s.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Claims.ID, claims.ID)
}

func TestLogin_Unauthorized(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	registerAlice(t, s)

	_, err := s.Login(context.Background(), "alice", "wrong-password")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "bob", "secret-password")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_RepoError(t *testing.T) {
	s := newService(t, &brokenRepos{err: errors.New("db down")})

	_, err := s.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestAuthenticate_BadToken(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())

	_, err := s.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthenticate_RepoError(t *testing.T) {
	s := newService(t, &brokenRepos{err: errors.New("db down")})
	tok, _, err := s.tokens.Sign(time.Now(), "u-1")
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), tok)
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestProfile(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	u := registerAlice(t, s)

	got, err := s.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = s.Profile(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	registerAlice(t, s)

	res, err := s.Login(context.Background(), "alice", "secret-password")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), res.Claims))

	_, err = s.Authenticate(context.Background(), res.Token)
	require.ErrorIs(t, err, common.ErrTokenRevoked)

	other, err := s.Login(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	_, err = s.Authenticate(context.Background(), other.Token)
	require.NoError(t, err, "a fresh login is unaffected")
}

func TestLogout_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s := newService(t, repomanager.NewPostgresRepositoryManager(db))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	_, claims, err := s.tokens.Sign(now, "u-1")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+revoked_tokens`).
		WithArgs(claims.ID, "u-1", claims.ExpiresAt.Time).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+revoked_tokens`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.Logout(context.Background(), claims))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout_RepoError(t *testing.T) {
	s := newService(t, &brokenRepos{err: errors.New("db down")})

	err := s.Logout(context.Background(), &auth.Claims{UserID: "u-1"})
	require.ErrorIs(t, err, common.ErrorInternal)
}

func ptr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	u := registerAlice(t, s)

	got, err := s.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Name: ptr("  Alice Liddell ")})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.Name)
	assert.Equal(t, "alice@example.com", got.Email, "nil field is left unchanged")

	got, err = s.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Email: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, got.Email, "email can be cleared")

	res, err := s.Login(context.Background(), "alice", "secret-password")
	require.NoError(t, err, "password is untouched")
	assert.Equal(t, "Alice Liddell", res.User.Name)
}

func TestUpdateProfile_Errors(t *testing.T) {
	s := newService(t, repomanager.NewMemoryRepositoryManager())
	u := registerAlice(t, s)
	_, err := s.Register(context.Background(), RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Email: ptr("nope")})
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Email: ptr("BOB@example.com")})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.UpdateProfile(context.Background(), "missing", ProfileUpdate{Name: ptr("x")})
	require.ErrorIs(t, err, common.ErrorNotFound)

	broken := newService(t, &brokenRepos{err: errors.New("db down")})
	_, err = broken.UpdateProfile(context.Background(), u.ID, ProfileUpdate{})
	require.ErrorIs(t, err, common.ErrorInternal)
}
