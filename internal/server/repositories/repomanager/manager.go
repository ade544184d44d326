// Package repomanager vends the server's repositories from one place, so the
// services can run several of them inside a single transaction without
// knowing which storage backend is in use.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/ocrdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	RevokedTokens() revokedtokens.Repository

	// WithTx runs fn with a manager whose repositories share one
	// transaction. Calling WithTx on such a manager joins the outer one.
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error

	RunMigrations(ctx context.Context) error
	Close() error
}
