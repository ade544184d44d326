package revokedtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	expiry map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{expiry: make(map[string]time.Time)}
}

func (r *MemoryRepository) Revoke(_ context.Context, token *models.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expiry[token.ID]; !ok {
		r.expiry[token.ID] = token.ExpiresAt
	}
	return nil
}

func (r *MemoryRepository) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.expiry[id]
	return ok, nil
}

func (r *MemoryRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, exp := range r.expiry {
		if !exp.After(now) {
			delete(r.expiry, id)
			n++
		}
	}
	return n, nil
}
