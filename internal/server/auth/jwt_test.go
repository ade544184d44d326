package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
)

func TestSignAndParse_Success(t *testing.T) {
	t.Parallel()

	m := NewJWTManager([]byte("super-secret"), time.Hour)
	now := time.Now()

	tok, issued, err := m.Sign(now, "user-123")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestSign_UniqueIDs(t *testing.T) {
	t.Parallel()

	m := NewJWTManager([]byte("k"), time.Hour)
	_, a, err := m.Sign(time.Now(), "u")
	require.NoError(t, err)
	_, b, err := m.Sign(time.Now(), "u")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager([]byte("secret"), time.Minute)
	tok, _, err := m.Sign(time.Now().Add(-time.Hour), "u1")
	require.NoError(t, err)

	_, err = m.Parse(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewJWTManager([]byte("right-secret"), time.Hour).Sign(time.Now(), "u2")
	require.NoError(t, err)

	_, err = NewJWTManager([]byte("wrong-secret"), time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewJWTManager([]byte("k"), time.Hour).Parse("not.a.jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_RejectsNoneAlg(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "j",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager([]byte("k"), time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_MissingUserID(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "j", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTManager(secret, time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_MissingExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "j"},
		UserID:           "u",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTManager(secret, time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
