// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Owns at most one duplex WebSocket connection per screen
//   - Sends application-level ping frames and tracks pong liveness
//   - Handles reconnection with capped exponential backoff and jitter
//   - Forwards raw inbound frames to the Event Router without interpretation
package connection
