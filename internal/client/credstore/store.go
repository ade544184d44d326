// Package credstore provides session.CredentialStore implementations for the
// terminal client: one backed by the local SQLite metadata table, one held in
// memory for tests and throwaway sessions.
package credstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ocrdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ocrdesk/internal/common"
)

// MetadataStore keeps the credential under a single metadata key.
type MetadataStore struct {
	repo metadata.Repository
	key  string
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo, key: common.CredentialMetadataKey}
}

func (s *MetadataStore) Get(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return string(v), nil
}

// Set stores token. An empty token is the same as Clear so that Get never
// reports an empty-but-present credential.
func (s *MetadataStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.repo.Set(ctx, s.key, []byte(token)); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// MemoryStore is a process-local credential store.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{token: initial}
}

func (s *MemoryStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	return s.Set(context.Background(), "")
}
