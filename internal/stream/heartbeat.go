package stream

import (
	"context"
	"time"
)

const (
	pingFrame Frame = "ping"
	pongFrame Frame = "pong"
)

// Heartbeat wraps a Duplex with a ping/pong liveness check. It arms a ping
// timer when NewHeartbeat starts it, not on the first read of Frames();
// any inbound frame resets that timer. When the ping
// timer elapses it sends "ping" and arms a pong timer; if the pong timer
// elapses before a "pong" frame arrives, the connection is considered dead
// and Frames() closes. Inbound "pong" frames are swallowed; everything
// else passes through unchanged.
type Heartbeat struct {
	inner        Duplex
	pingInterval time.Duration
	pongTimeout  time.Duration
	out          chan Frame
}

// NewHeartbeat starts the heartbeat goroutine and returns a Duplex that
// behaves like inner but with liveness checking layered on top. The
// returned Duplex's Frames() channel closes when inner ends, a send fails,
// the pong timeout fires, or ctx is cancelled.
func NewHeartbeat(ctx context.Context, inner Duplex, pingInterval, pongTimeout time.Duration) *Heartbeat {
	hb := &Heartbeat{
		inner:        inner,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
		out:          make(chan Frame),
	}
	go hb.run(ctx)
	return hb
}

func (hb *Heartbeat) run(ctx context.Context) {
	defer close(hb.out)

	pingTimer := time.NewTimer(hb.pingInterval)
	defer pingTimer.Stop()

	var pongTimer *time.Timer
	waitingPong := false
	defer func() {
		if pongTimer != nil {
			pongTimer.Stop()
		}
	}()

	for {
		var pongCh <-chan time.Time
		if pongTimer != nil {
			pongCh = pongTimer.C
		}

		select {
		case <-ctx.Done():
			return

		case <-pongCh:
			if waitingPong {
				return
			}

		case <-pingTimer.C:
			if err := hb.inner.Send(ctx, pingFrame); err != nil {
				return
			}
			waitingPong = true
			pongTimer = time.NewTimer(hb.pongTimeout)
			pingTimer.Reset(hb.pingInterval)

		case frame, ok := <-hb.inner.Frames():
			if !ok {
				return
			}
			pingTimer.Reset(hb.pingInterval)
			if frame == pongFrame {
				waitingPong = false
				continue
			}
			select {
			case hb.out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (hb *Heartbeat) Frames() <-chan Frame { return hb.out }

func (hb *Heartbeat) Send(ctx context.Context, frame Frame) error {
	return hb.inner.Send(ctx, frame)
}

func (hb *Heartbeat) Close() error {
	return hb.inner.Close()
}
