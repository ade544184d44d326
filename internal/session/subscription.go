package session

// Subscription delivers snapshots to one consumer. The channel holds at most
// one pending snapshot: a slow reader skips intermediate states but always
// ends on the latest one.
type Subscription struct {
	id      uint64
	ch      chan Snapshot
	session *Session
}

// Subscribe registers a consumer. The current snapshot is available on the
// channel right away.
func (s *Session) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{ch: make(chan Snapshot, 1), session: s}
	if s.closed {
		close(sub.ch)
		return sub
	}

	s.nextSubID++
	sub.id = s.nextSubID
	s.subs[sub.id] = sub
	sub.ch <- s.snapshotLocked()
	return sub
}

// Updates is closed after Unsubscribe or when the session is closed.
func (sub *Subscription) Updates() <-chan Snapshot {
	return sub.ch
}

// Unsubscribe is idempotent.
func (sub *Subscription) Unsubscribe() {
	s := sub.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.id]; ok {
		delete(s.subs, sub.id)
		close(sub.ch)
	}
}

// offer is only called with the session lock held, so it is the only sender.
func (sub *Subscription) offer(snap Snapshot) {
	for {
		select {
		case sub.ch <- snap:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

// publishLocked offers the current snapshot to every subscriber unless it
// equals the last one published.
func (s *Session) publishLocked() {
	snap := s.snapshotLocked()
	if snap.equal(s.published) {
		return
	}
	s.published = snap
	for _, sub := range s.subs {
		snap.User = s.user.Clone()
		sub.offer(snap)
	}
}
