// Package api is the REST client for the café backend.
//
// The backend is an external collaborator: this package consumes its
// snapshot/query endpoints (orders, bills, aggregates, catalog) and its
// mutating endpoints (create, advance, pay, cancel). Privileged calls
// attach the configured credential header. Retries apply to 5xx and 429
// responses only; authorization failures surface immediately so callers
// can distinguish "session invalid" from transient faults.
package api
