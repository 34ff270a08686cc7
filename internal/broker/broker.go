// Package broker implements the Broker/Engine contract that sits between
// a market-data-and-fills source and a Strategy, plus the sandbox matcher
// (a deterministic simulation broker for backtests). The live venue
// adapter is okx.Broker in internal/okx. Both satisfy the same Broker
// interface so the Engine's cooperative loop never needs to know which one
// it is driving.
package broker

import (
	"context"

	"okx-trading-core/internal/strategy"
	"okx-trading-core/pkg/types"
)

// Broker is the engine's view of either a live venue connection or a
// sandbox simulation: pull the next BrokerEvent, push ClientEvents back.
type Broker interface {
	Next(ctx context.Context) (types.BrokerEvent, bool, error)
	Send(ctx context.Context, events []types.ClientEvent) error
}

// Engine is the single cooperative loop driving one Strategy against one
// Broker: pull an event, hand it to the strategy, push whatever
// ClientEvents come back, repeat until the broker's event stream ends or
// ctx is cancelled.
//
// This is deliberately NOT the teacher's multi-goroutine
// engine.manageMarkets fan-out — a trading strategy's state machine must
// see events in one consistent total order, so the loop is single
// threaded by design. The teacher's goroutine/lifecycle idiom is reused
// only at the outer cmd/*/main.go level.
type Engine struct {
	broker   Broker
	strategy strategy.Strategy
}

// NewEngine builds the cooperative loop over one broker and one strategy.
func NewEngine(b Broker, s strategy.Strategy) *Engine {
	return &Engine{broker: b, strategy: s}
}

// Run drives the loop until the broker's stream ends (returns nil), ctx is
// cancelled (returns ctx.Err()), or the broker reports a fatal error.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		event, ok, err := e.broker.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		clientEvents := e.strategy.OnEvent(event)
		if len(clientEvents) == 0 {
			continue
		}
		if err := e.broker.Send(ctx, clientEvents); err != nil {
			return err
		}
	}
}
