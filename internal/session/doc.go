// Package session tracks whether the user of the client is signed in.
//
// # Overview
//
// A Session owns three things:
//  1. the current Snapshot ({User, IsAuthenticated, Loading});
//  2. the persisted bearer credential, through a CredentialStore;
//  3. the startup reconciliation, which turns a persisted credential into a
//     confirmed user by asking an IdentityGateway, or discards it.
//
// Lifecycle
//
//	Initializing --(no credential)------------------> Anonymous
//	Initializing --(gateway returns profile)--------> Authenticated
//	Initializing --(gateway fails; store cleared)---> Anonymous
//	Anonymous  <--Logout / Login-->  Authenticated
//
// Reconciliation runs once per Session. Login and Logout never go back to
// Initializing; if they are called while reconciliation is still pending
// they are queued and replayed, in call order, right after it lands.
//
// # Provider
//
// Application code does not keep a global Session. A Provider owns the one
// Session of a running application and mounts it into a context.Context;
// consumers reach it with Use(ctx), which panics when no provider is in
// scope. Consumers that need change notifications call Subscribe and must
// Unsubscribe when done.
//
// # Errors
//
// Gateway and store failures are absorbed: they end in the Anonymous state
// and are logged, never returned to consumers. Returned errors are
// programming mistakes (ErrNoUser, ErrAlreadyStarted, ErrClosed) or a
// failure to persist a fresh credential on Login.
package session
