// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. A transport-agnostic API contract (see the Client interface) for the
//     reflections server: Ping, SignUp/SignIn/Refresh and row-level access
//     to the reflections table.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches
//     bearer tokens and maps status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures and 5xx responses are reported as ErrUnavailable and
// 401/403 as ErrUnauthorized. 404, 409 and 400 map to common.ErrorNotFound,
// common.ErrorAlreadyExists and common.ErrorValidation. Match with errors.Is.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
