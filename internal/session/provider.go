package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/ocrdesk/internal/logging"
)

// Provider owns the one Session of a running application and makes it
// reachable from any context derived from Mount.
type Provider struct {
	session *Session
	logger  logging.Logger
	once    sync.Once
}

func NewProvider(store CredentialStore, gateway IdentityGateway, logger logging.Logger, opts ...Option) *Provider {
	return &Provider{
		session: New(store, gateway, logger, opts...),
		logger:  logger,
	}
}

// Mount starts reconciliation on first use and returns ctx carrying the
// session. ctx bounds the reconciliation, so it should live as long as the
// application.
func (p *Provider) Mount(ctx context.Context) context.Context {
	p.once.Do(func() {
		if err := p.session.Start(ctx); err != nil {
			p.logger.Error(ctx, "failed to start session", "error", err)
		}
	})
	return NewContext(ctx, p.session)
}

func (p *Provider) Session() *Session {
	return p.session
}

func (p *Provider) Close() {
	p.session.Close()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Use returns the session mounted in ctx and panics with ErrOutsideProvider
// when there is none.
func Use(ctx context.Context) *Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic(ErrOutsideProvider)
	}
	return s
}
