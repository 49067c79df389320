// Package authorization resolves governance roles into capabilities.
//
// Layering:
// - domain: role catalog, assignments, permission decisions, errors
// - application: grant/revoke commands and cache-first permission queries
// - ports: repository, permission cache, idempotency, clock and id boundaries
// - adapters: HTTP handler, memory store, postgres repository, redis cache
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Permission strings are the governance capability identifiers; the
//   governance module reaches this service only through runtime wiring.
package authorization
