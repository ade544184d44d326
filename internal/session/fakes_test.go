package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake store ----

type fakeStore struct {
	mu     sync.Mutex
	token  string
	getErr error
	setErr error
	clrErr error

	sets   int
	clears int
}

func (f *fakeStore) Get(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.token, nil
}

func (f *fakeStore) Set(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clrErr != nil {
		return f.clrErr
	}
	f.token = ""
	return nil
}

func (f *fakeStore) value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// ---- fake gateway ----

type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	user *UserProfile
	err  error

	// release, when set, holds FetchProfile until it is closed. The fake
	// deliberately ignores ctx, like a hung transport would.
	release chan struct{}
}

func (f *fakeGateway) FetchProfile(_ context.Context, credential string) (*UserProfile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, credential)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return f.user.Clone(), f.err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

var errRejected = errors.New("401 unauthorized")

// ---- helpers ----

func newTestSession(t *testing.T, store *fakeStore, gw *fakeGateway, opts ...Option) *Session {
	t.Helper()
	s := New(store, gw, logging.Discard(), opts...)
	t.Cleanup(s.Close)
	return s
}

func startAndWait(t *testing.T, s *Session) Snapshot {
	t.Helper()
	require.NoError(t, s.Start(context.Background()))
	return waitResolved(t, s)
}

func waitResolved(t *testing.T, s *Session) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.Wait(ctx)
	require.NoError(t, err, "session did not resolve in time")
	return snap
}

func checkInvariant(t *testing.T, snap Snapshot) {
	t.Helper()
	assert.Equal(t, snap.IsAuthenticated, snap.User != nil, "isAuthenticated must match user presence: %+v", snap)
}
