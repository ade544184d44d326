package revokedtokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
)

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, r.Revoke(ctx, &models.RevokedToken{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, r.Revoke(ctx, &models.RevokedToken{ID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, r.Revoke(ctx, &models.RevokedToken{ID: "live", ExpiresAt: now.Add(-time.Hour)}),
		"second revoke is a no-op")

	ok, err := r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = r.IsRevoked(ctx, "unknown")
	assert.False(t, ok)

	n, err := r.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, _ = r.IsRevoked(ctx, "old")
	assert.False(t, ok)
	ok, _ = r.IsRevoked(ctx, "live")
	assert.True(t, ok)
}
