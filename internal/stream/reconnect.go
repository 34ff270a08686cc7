package stream

import (
	"context"
	"sync"
	"time"
)

// flushPollInterval is how often Flush re-checks whether the outbound
// queue has drained.
const flushPollInterval = 5 * time.Millisecond

// AutoReconnect wraps a connection factory and presents a single durable
// Duplex that reconnects whenever the underlying connection ends. Frames
// lost during a reconnect are not replayed. Outbound frames are queued in
// an unbounded buffer and drained through whichever connection is
// currently live; a failed send re-queues the item at the head and forces
// a reconnect, so queued items survive reconnects and are delivered in
// order.
type AutoReconnect struct {
	factory Factory

	mu      sync.Mutex
	queue   []Frame
	current Duplex
	reconnects int

	notify chan struct{}
	out    chan Frame
}

// NewAutoReconnect dials the first connection in the background and
// returns immediately; callers observe connectivity only through Frames()
// and the latency of Send().
func NewAutoReconnect(ctx context.Context, factory Factory) *AutoReconnect {
	ar := &AutoReconnect{
		factory: factory,
		notify:  make(chan struct{}, 1),
		out:     make(chan Frame),
	}
	go ar.connectLoop(ctx)
	go ar.sendLoop(ctx)
	return ar
}

// Reconnects returns the number of times the factory has been invoked,
// including the initial connect.
func (ar *AutoReconnect) Reconnects() int {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return ar.reconnects
}

func (ar *AutoReconnect) signal() {
	select {
	case ar.notify <- struct{}{}:
	default:
	}
}

func (ar *AutoReconnect) connectLoop(ctx context.Context) {
	defer close(ar.out)
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := ar.factory(ctx)
		ar.mu.Lock()
		ar.reconnects++
		ar.mu.Unlock()
		if err != nil {
			// Reconnect failure: retry immediately. Callers wrap this in
			// their own back-off policy if one is needed.
			continue
		}

		ar.mu.Lock()
		ar.current = conn
		ar.mu.Unlock()
		ar.signal()

		ar.forward(ctx, conn)

		ar.mu.Lock()
		if ar.current == conn {
			ar.current = nil
		}
		ar.mu.Unlock()
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
	}
}

func (ar *AutoReconnect) forward(ctx context.Context, conn Duplex) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-conn.Frames():
			if !ok {
				return
			}
			select {
			case ar.out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (ar *AutoReconnect) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ar.notify:
		}

		for {
			ar.mu.Lock()
			if len(ar.queue) == 0 {
				ar.mu.Unlock()
				break
			}
			conn := ar.current
			item := ar.queue[0]
			ar.mu.Unlock()

			if conn == nil {
				break // wait for the next connect signal
			}
			if ctx.Err() != nil {
				return
			}

			if err := conn.Send(ctx, item); err != nil {
				// Closing the dead connection makes connectLoop's forward
				// loop observe a closed Frames() channel and reconnect;
				// the item stays at the head of the queue to be resent.
				_ = conn.Close()
				ar.mu.Lock()
				if ar.current == conn {
					ar.current = nil
				}
				ar.mu.Unlock()
				break
			}

			ar.mu.Lock()
			ar.queue = ar.queue[1:]
			ar.mu.Unlock()
		}
	}
}

// Frames returns the channel of frames received across all reconnects.
func (ar *AutoReconnect) Frames() <-chan Frame { return ar.out }

// Send enqueues frame for delivery and returns immediately; it does not
// wait for the frame to actually reach a connection. Use Flush to wait for
// the queue to drain.
func (ar *AutoReconnect) Send(ctx context.Context, frame Frame) error {
	ar.mu.Lock()
	ar.queue = append(ar.queue, frame)
	ar.mu.Unlock()
	ar.signal()
	return nil
}

// Flush blocks, cooperatively, until the outbound queue is fully drained
// or ctx is cancelled.
func (ar *AutoReconnect) Flush(ctx context.Context) error {
	for {
		ar.mu.Lock()
		empty := len(ar.queue) == 0
		ar.mu.Unlock()
		if empty {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(flushPollInterval):
		}
	}
}

// Close closes the current connection, if any. It does not stop reconnect
// attempts: connectLoop dials a new connection unless ctx is done, and
// Frames() stops producing only once connectLoop observes ctx done.
func (ar *AutoReconnect) Close() error {
	ar.mu.Lock()
	conn := ar.current
	ar.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
