package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. WithTx only
// serializes callers; nothing is rolled back on error.
type MemoryRepositoryManager struct {
	txMu    *sync.Mutex
	users   *users.MemoryRepository
	revoked *revokedtokens.MemoryRepository
	inTx    bool
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		txMu:    &sync.Mutex{},
		users:   users.NewMemoryRepository(),
		revoked: revokedtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) RevokedTokens() revokedtokens.Repository {
	return m.revoked
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := *m
	tx.inTx = true
	return fn(ctx, &tx)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
