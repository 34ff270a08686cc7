package okx

import (
	"context"
	"fmt"
	"time"

	"okx-trading-core/internal/stream"
	"okx-trading-core/pkg/types"
)

// Broker is the live venue adapter: it satisfies the same Next/Send
// contract as the sandbox matcher (internal/broker.Broker), backed by two
// real OKX WebSocket sessions instead of a replayed data file.
//
// Grounded on original_source/data_center/src/okx_api.rs's
// OkxWsStreamAdapted (split public/private poll_next, is_private-routed
// start_send) and the spec's split-stream policy: public drained before
// private, every poll.
type Broker struct {
	public  *stream.AutoReconnect
	private *stream.AutoReconnect

	profiles map[types.InstrumentID]types.InstrumentProfile
	level1   map[types.InstrumentID]*Level1Accumulator

	limiter *rateLimiter

	portfolio *types.Portfolio
}

// NewBroker dials the public and private sessions (each auto-reconnecting,
// heartbeat-wrapped, pre-subscribed) and returns the ready live broker.
// Dialing and the login handshake start at once in the background inside
// stream.AutoReconnect's connect loop; NewBroker itself never blocks on
// the network.
func NewBroker(
	ctx context.Context,
	wsPublicURL, wsPrivateURL string,
	creds Credentials,
	instruments []types.InstrumentID,
	profiles map[types.InstrumentID]types.InstrumentProfile,
	pingInterval, pongTimeout time.Duration,
) (*Broker, error) {
	var publicFrames, privateFrames []stream.Frame
	level1 := make(map[types.InstrumentID]*Level1Accumulator, len(instruments))
	for _, inst := range instruments {
		tradesFrame, err := EncodeSubscribeTrades(inst)
		if err != nil {
			return nil, err
		}
		bboFrame, err := EncodeSubscribeBboTbt(inst)
		if err != nil {
			return nil, err
		}
		ordersFrame, err := EncodeSubscribeOrders(inst)
		if err != nil {
			return nil, err
		}
		publicFrames = append(publicFrames, tradesFrame, bboFrame)
		privateFrames = append(privateFrames, ordersFrame)
		level1[inst] = NewLevel1Accumulator()
	}

	public := NewSession(ctx, SessionConfig{
		URL: wsPublicURL, Private: false,
		PingInterval: pingInterval, PongTimeout: pongTimeout,
	}, publicFrames)
	private := NewSession(ctx, SessionConfig{
		URL: wsPrivateURL, Private: true, Creds: creds,
		PingInterval: pingInterval, PongTimeout: pongTimeout,
	}, privateFrames)

	return &Broker{
		public:    public,
		private:   private,
		profiles:  profiles,
		level1:    level1,
		limiter:   NewRateLimiter(),
		portfolio: types.NewPortfolio(),
	}, nil
}

// Position returns the broker's locally tracked position for an
// instrument, maintained from order-push fills as they arrive. This is a
// monitoring convenience, not a source of truth — the venue's own account
// state is authoritative; a process restart starts this tracker at zero.
func (b *Broker) Position(id types.InstrumentID) types.Position {
	return b.portfolio.Position(id)
}

// Next implements the broker contract: drain the public session before
// the private one on every poll, decoding and converting whatever comes
// off the wire into one BrokerEvent. Event frames (subscribe/login/error
// acks) and non-text data this package doesn't recognize are skipped
// without surfacing to the caller — Next keeps pulling until it has a
// real event or both sessions have ended.
func (b *Broker) Next(ctx context.Context) (types.BrokerEvent, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return types.BrokerEvent{}, false, err
		}

		// Prefer the public session: a non-blocking check drains it ahead
		// of private whenever both have a frame ready.
		select {
		case frame, ok := <-b.public.Frames():
			if !ok {
				return types.BrokerEvent{}, false, nil
			}
			if event, emit, err := b.handleFrame(frame); err != nil || emit {
				return event, emit, err
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return types.BrokerEvent{}, false, ctx.Err()

		case frame, ok := <-b.public.Frames():
			if !ok {
				return types.BrokerEvent{}, false, nil
			}
			if event, emit, err := b.handleFrame(frame); err != nil || emit {
				return event, emit, err
			}

		case frame, ok := <-b.private.Frames():
			if !ok {
				return types.BrokerEvent{}, false, nil
			}
			if event, emit, err := b.handleFrame(frame); err != nil || emit {
				return event, emit, err
			}
		}
	}
}

func (b *Broker) handleFrame(frame stream.Frame) (types.BrokerEvent, bool, error) {
	push, err := DecodePush([]byte(frame))
	if err != nil {
		// An undecodable frame is dropped; the stream continues.
		return types.BrokerEvent{}, false, nil
	}

	switch push.Kind {
	case PushNone:
		return types.BrokerEvent{}, false, nil

	case PushOrder:
		if push.Order.Kind == types.EventFill {
			b.portfolio.ApplyFill(push.Order.Fill)
		}
		return push.Order, true, nil

	case PushTrade:
		acc, ok := b.level1[push.Trade.InstrumentID]
		if !ok {
			return types.BrokerEvent{}, false, nil
		}
		acc.PushTrade(push.Trade)
		return types.BrokerEvent{}, false, nil

	case PushBbo:
		acc, ok := b.level1[push.Bbo.InstrumentID]
		if !ok {
			return types.BrokerEvent{}, false, nil
		}
		level1 := acc.PushBbo(push.Bbo)
		return types.DataEvent(level1), true, nil

	default:
		return types.BrokerEvent{}, false, fmt.Errorf("okx: unhandled push kind %v", push.Kind)
	}
}

// Send implements the broker contract: rate-limit, encode, and route each
// ClientEvent to the private session (every order op is private per the
// spec's channel-class routing).
func (b *Broker) Send(ctx context.Context, events []types.ClientEvent) error {
	for _, ev := range events {
		if err := b.limiter.Wait(ctx, ev.Kind); err != nil {
			return err
		}

		inst := eventInstrument(ev)
		profile := b.profiles[inst]
		frame, err := EncodeClientEvent(ev, profile.PriceDigits, profile.SizeDigits)
		if err != nil {
			return err
		}
		if err := b.private.Send(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

func eventInstrument(ev types.ClientEvent) types.InstrumentID {
	switch ev.Kind {
	case types.ClientPlaceMarket:
		return ev.Market.InstrumentID
	case types.ClientPlaceLimit:
		return ev.Limit.InstrumentID
	case types.ClientAmend:
		return ev.Amend.InstrumentID
	case types.ClientCancel:
		return ev.InstrumentID
	default:
		return ""
	}
}
