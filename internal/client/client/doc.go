// Package client contains the terminal client's side of the accounts API and
// the bootstrap of its local SQLite database.
//
// # Overview
//
//  1. Client is the transport-agnostic contract the services depend on:
//     Register, Login, FetchProfile, Logout and Ping.
//  2. HTTPClient implements it over the REST endpoints under /api/accounts/.
//     Authenticated calls carry the bearer token through an oauth2.Transport,
//     and a 401 on any of them fires the optional unauthorized hook.
//  3. InitDatabase and RunMigrations open the local database and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Transport failures are mapped to sentinel errors that callers match with
// errors.Is: ErrUnauthorized, ErrConflict, ErrValidation and ErrUnavailable.
// Other non-2xx responses come back as *APIError.
//
// HTTPClient implements session.IdentityGateway, so it can be handed to
// session.New directly.
package client
