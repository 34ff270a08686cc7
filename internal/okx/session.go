package okx

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"okx-trading-core/internal/stream"
)

const (
	writeTimeout   = 10 * time.Second
	dialTimeout    = 10 * time.Second
	inboundBufSize = 256
)

// wsDuplex adapts a gorilla/websocket connection to stream.Duplex: text
// frames in, text frames out. Grounded on the teacher's internal/exchange/
// ws.go connectAndRead/writeMessage pattern, reduced to the Frames()/Send()
// shape stream.Heartbeat and stream.AutoReconnect expect.
type wsDuplex struct {
	conn   *websocket.Conn
	frames chan stream.Frame
}

func dialWsDuplex(ctx context.Context, url string) (*wsDuplex, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("okx: dial %s: %w", url, err)
	}
	d := &wsDuplex{conn: conn, frames: make(chan stream.Frame, inboundBufSize)}
	go d.readLoop()
	return d, nil
}

func (d *wsDuplex) readLoop() {
	defer close(d.frames)
	for {
		_, msg, err := d.conn.ReadMessage()
		if err != nil {
			return
		}
		d.frames <- stream.Frame(msg)
	}
}

func (d *wsDuplex) Frames() <-chan stream.Frame { return d.frames }

func (d *wsDuplex) Send(ctx context.Context, frame stream.Frame) error {
	deadline := time.Now().Add(writeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := d.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return d.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (d *wsDuplex) Close() error {
	return d.conn.Close()
}

// SessionConfig parameterizes the factory a public/private session dials
// through on every (re)connect.
type SessionConfig struct {
	URL                       string
	Private                   bool
	Creds                     Credentials
	Instruments               []string // instId, already wire-formatted
	PingInterval, PongTimeout time.Duration
}

// NewSession builds the durable, auto-reconnecting Duplex for one OKX
// channel class: dial, heartbeat-wrap, log in if private, (re)subscribe on
// every connect, hand off to AutoReconnect. Mirrors okx_api.rs's connect():
// connect_async -> with_heartbeat -> login -> send subscribe actions ->
// AutoReconnect::new(factory).
func NewSession(ctx context.Context, cfg SessionConfig, subscribeFrames []stream.Frame) *stream.AutoReconnect {
	factory := func(ctx context.Context) (stream.Duplex, error) {
		raw, err := dialWsDuplex(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		hb := stream.NewHeartbeat(ctx, raw, cfg.PingInterval, cfg.PongTimeout)

		if cfg.Private {
			if err := Login(ctx, hb, cfg.Creds); err != nil {
				_ = hb.Close()
				return nil, fmt.Errorf("okx: login: %w", err)
			}
		}
		for _, frame := range subscribeFrames {
			if err := hb.Send(ctx, frame); err != nil {
				_ = hb.Close()
				return nil, fmt.Errorf("okx: subscribe: %w", err)
			}
		}
		return hb, nil
	}
	return stream.NewAutoReconnect(ctx, factory)
}
