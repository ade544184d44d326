package session

import "errors"

var (
	// ErrOutsideProvider is the panic value of Use when ctx carries no session.
	ErrOutsideProvider = errors.New("session: used outside of a mounted provider")

	ErrNoUser         = errors.New("session: login payload has no user")
	ErrAlreadyStarted = errors.New("session: reconciliation already started")
	ErrClosed         = errors.New("session: closed")
	ErrEmptyProfile   = errors.New("session: identity gateway returned no profile")
)
