// Package screen wires one screen's components together.
//
// A Session owns the connection manager, event router, reconciler, and
// local collection for a single screen (table assistant, kitchen,
// cashier, or admin). All state mutation happens on the session's one
// event loop: connection state changes, snapshot results, countdown
// ticks, and user actions are discrete tasks processed in sequence, so
// the collection needs no locking.
package screen
