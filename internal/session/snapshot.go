package session

// State is the coarse position of a Session in its lifecycle.
type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one instant. User is a
// private copy; changing it does not affect the session.
type Snapshot struct {
	User            *UserProfile
	IsAuthenticated bool
	Loading         bool
}

func (s Snapshot) State() State {
	switch {
	case s.Loading:
		return StateInitializing
	case s.IsAuthenticated:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

func (s Snapshot) equal(o Snapshot) bool {
	if s.IsAuthenticated != o.IsAuthenticated || s.Loading != o.Loading {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == o.User
	}
	return *s.User == *o.User
}
