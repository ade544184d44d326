// Package revokedtokens remembers signed-out access tokens by their jti
// until they expire on their own.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
)

type Repository interface {
	// Revoke is idempotent: revoking the same id twice is not an error.
	Revoke(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, id string) (bool, error)
	// PurgeExpired drops entries whose ExpiresAt is not after now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
