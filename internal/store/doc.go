// Package store implements the local order collection and the
// Reconciliation Engine.
//
// The collection is the screen's local mirror of server truth, keyed by
// order id. Live deltas never patch it; they only wake the reconciler,
// which fetches a full snapshot and replaces the collection wholesale.
// That replace-wholesale policy sidesteps lost-update and out-of-order
// delta hazards at the cost of refetch bandwidth.
package store
