package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ocrdesk/internal/logging"
)

// Option configures a Session.
type Option func(*Session)

// WithReconcileTimeout bounds the identity gateway call made during startup
// reconciliation. A timeout counts as a gateway failure. Zero (the default)
// waits for the gateway indefinitely.
func WithReconcileTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.reconcileTimeout = d
	}
}

type mutation struct {
	name  string
	ctx   context.Context
	apply func(ctx context.Context) error
}

// Session is the authentication state machine. All methods are safe for
// concurrent use; every transition, together with its store write and its
// publication to subscribers, happens under one lock.
type Session struct {
	store            CredentialStore
	gateway          IdentityGateway
	logger           logging.Logger
	reconcileTimeout time.Duration

	mu            sync.Mutex
	user          *UserProfile
	authenticated bool
	loading       bool
	started       bool
	closed        bool
	queue         []mutation
	subs          map[uint64]*Subscription
	nextSubID     uint64
	cancel        context.CancelFunc
	published     Snapshot

	resolved chan struct{}
	closing  chan struct{}
	done     chan struct{}
}

// New returns a Session in the Initializing state. Nothing happens until
// Start is called.
func New(store CredentialStore, gateway IdentityGateway, logger logging.Logger, opts ...Option) *Session {
	s := &Session{
		store:     store,
		gateway:   gateway,
		logger:    logger.With("component", "session"),
		loading:   true,
		published: Snapshot{Loading: true},
		subs:      make(map[uint64]*Subscription),
		resolved:  make(chan struct{}),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the startup reconciliation in the background and returns
// immediately. Cancelling ctx abandons a pending reconciliation without a
// transition. It may be called once.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go s.reconcile(ctx)
	return nil
}

func (s *Session) reconcile(ctx context.Context) {
	defer close(s.done)

	token, err := s.store.Get(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn(ctx, "credential store unavailable, continuing anonymous", "error", err)
		token = ""
	}

	if token == "" {
		s.logger.Debug(ctx, "no stored credential")
		s.land(ctx, nil, false)
		return
	}

	user, err := s.fetchProfile(ctx, token)
	if ctx.Err() != nil {
		s.logger.Debug(ctx, "reconciliation abandoned", "error", ctx.Err())
		return
	}
	if err != nil {
		s.logger.Warn(ctx, "stored credential rejected, discarding it", "error", err)
		s.land(ctx, nil, true)
		return
	}

	s.land(ctx, user, false)
}

type fetchResult struct {
	user *UserProfile
	err  error
}

// fetchProfile calls the gateway but stops waiting as soon as ctx is done,
// even if the gateway itself ignores ctx.
func (s *Session) fetchProfile(ctx context.Context, token string) (*UserProfile, error) {
	if s.reconcileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reconcileTimeout)
		defer cancel()
	}

	ch := make(chan fetchResult, 1)
	go func() {
		user, err := s.gateway.FetchProfile(ctx, token)
		ch <- fetchResult{user: user, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.user == nil {
			return nil, ErrEmptyProfile
		}
		return r.user.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// land performs the single transition out of Initializing and then replays
// the mutations queued meanwhile.
func (s *Session) land(ctx context.Context, user *UserProfile, discard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if discard {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn(ctx, "failed to clear stale credential", "error", err)
		}
	}

	s.user = user
	s.authenticated = user != nil
	s.loading = false
	close(s.resolved)

	snap := s.snapshotLocked()
	s.logger.Info(ctx, "session resolved", "state", snap.State().String(), "user", userID(snap.User))
	s.publishLocked()

	queue := s.queue
	s.queue = nil
	for _, m := range queue {
		if err := m.apply(m.ctx); err != nil {
			s.logger.Warn(m.ctx, "queued session change failed", "op", m.name, "error", err)
		}
	}
}

// Login makes payload's user the signed-in user and, when the payload
// carries a credential, persists it. The identity gateway is not consulted.
// A previous session is replaced without merging.
//
// While reconciliation is pending the call is queued and returns nil.
func (s *Session) Login(ctx context.Context, payload LoginPayload) error {
	if payload == nil {
		return ErrNoUser
	}
	user := payload.loginUser().Clone()
	if user == nil {
		return ErrNoUser
	}
	token := payload.loginToken()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	apply := func(ctx context.Context) error {
		return s.loginLocked(ctx, user, token)
	}
	if s.loading {
		s.enqueueLocked(ctx, "login", apply)
		return nil
	}
	return apply(ctx)
}

func (s *Session) loginLocked(ctx context.Context, user *UserProfile, token string) error {
	var err error
	if token != "" {
		if serr := s.store.Set(ctx, token); serr != nil {
			err = fmt.Errorf("persist credential: %w", serr)
		}
	}

	s.user = user
	s.authenticated = true
	s.publishLocked()

	s.logger.Info(ctx, "signed in", "user", user.ID)
	return err
}

// Logout clears the stored credential and the user. Calling it while
// already anonymous still clears the store but notifies nobody.
//
// While reconciliation is pending the call is queued and returns nil.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.loading {
		s.enqueueLocked(ctx, "logout", s.logoutLocked)
		return nil
	}
	return s.logoutLocked(ctx)
}

func (s *Session) logoutLocked(ctx context.Context) error {
	var err error
	if cerr := s.store.Clear(ctx); cerr != nil {
		err = fmt.Errorf("clear credential: %w", cerr)
	}

	if s.authenticated {
		s.logger.Info(ctx, "signed out", "user", userID(s.user))
	}
	s.user = nil
	s.authenticated = false
	s.publishLocked()
	return err
}

func (s *Session) enqueueLocked(ctx context.Context, name string, apply func(ctx context.Context) error) {
	s.logger.Debug(ctx, "session still initializing, queueing change", "op", name)
	s.queue = append(s.queue, mutation{name: name, ctx: context.WithoutCancel(ctx), apply: apply})
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		User:            s.user.Clone(),
		IsAuthenticated: s.authenticated,
		Loading:         s.loading,
	}
}

// Resolved is closed once the startup reconciliation has landed.
func (s *Session) Resolved() <-chan struct{} {
	return s.resolved
}

// Wait blocks until reconciliation lands, ctx is done or the session is
// closed, and returns the snapshot at that moment.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-s.resolved:
		return s.Snapshot(), nil
	case <-s.closing:
		return s.Snapshot(), ErrClosed
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Close abandons a pending reconciliation and ends every subscription.
// The stored credential is left as it is.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.ch)
	}
	s.queue = nil
	close(s.closing)
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

func userID(u *UserProfile) string {
	if u == nil {
		return ""
	}
	return u.ID
}
