// Package router implements the Event Router component.
//
// The Event Router:
//   - Parses raw frames into typed {type, data} envelopes
//   - Dispatches by message kind on a single goroutine, in arrival order
//   - Treats state-bearing kinds purely as "authoritative state may have
//     changed" triggers; payloads are never applied as patches
//   - Drops malformed frames and ignores unknown kinds without ever
//     tearing down the connection
package router
