// Package auth mints and checks the HS256 access tokens handed out by the
// accounts API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
)

// Claims are the registered claims plus the account id. The token id (jti)
// is what logout revokes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

type JWTManager struct {
	secret   []byte
	validity time.Duration
}

func NewJWTManager(secret []byte, validity time.Duration) *JWTManager {
	return &JWTManager{secret: secret, validity: validity}
}

// Sign issues a token for userID valid from now for the configured duration.
func (m *JWTManager) Sign(now time.Time, userID string) (string, *Claims, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		UserID: userID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies the signature and expiry of tokenString. Expired tokens
// yield common.ErrTokenExpired, anything else wrong common.ErrInvalidToken.
func (m *JWTManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
