// Package stream provides composable duplex I/O primitives: heartbeat
// liveness checking, auto-reconnect with a buffered outbound queue,
// timestamp-ordered merge, and history-then-live concatenation. These are
// the plumbing every venue connection and historical replay is built on.
package stream

import (
	"context"
	"errors"
)

// Frame is a single wire-level text message exchanged with a duplex
// connection (e.g. a WebSocket text frame).
type Frame string

// ErrHeartbeatTimeout names the condition of a pong not observed within the
// configured pong timeout, signalling a dead peer. Heartbeat does not
// return it; it reports that condition by closing Frames().
var ErrHeartbeatTimeout = errors.New("stream: heartbeat timeout waiting for pong")

// Duplex is a bidirectional frame connection: an inbound channel of frames
// and an outbound Send. Frames closes when the connection ends (cleanly or
// otherwise); callers distinguish the two by checking ctx.Err() and any
// error returned by the last Send.
type Duplex interface {
	Frames() <-chan Frame
	Send(ctx context.Context, frame Frame) error
	Close() error
}

// Factory dials a fresh Duplex. Auto-reconnect calls this every time the
// current connection ends.
type Factory func(ctx context.Context) (Duplex, error)
