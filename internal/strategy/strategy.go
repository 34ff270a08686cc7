// Package strategy implements the signal/executor strategy engine: a
// Signaler turns market data into a directional opinion, an Executor turns
// that opinion plus fill feedback into order actions. A Strategy is the
// thing the Engine actually drives; SignalExecuteStrategy is the one
// concrete combinator the spec asks for.
package strategy

import (
	"okx-trading-core/pkg/types"
)

// Signal is a directional opinion produced by a Signaler.
type Signal int

const (
	Long Signal = iota
	Short
)

func (s Signal) String() string {
	if s == Long {
		return "long"
	}
	return "short"
}

// Strategy consumes BrokerEvents and produces the ClientEvents the broker
// should act on. It is the unit the Engine drives one event at a time.
type Strategy interface {
	OnEvent(event types.BrokerEvent) []types.ClientEvent
}

// Signaler turns new market data into an optional directional signal. A nil
// signal means "no opinion right now" — not "flat".
type Signaler interface {
	OnData(data types.Level1) *Signal
}

// Executor owns the working order and position state for one strategy
// instance. It observes every BrokerEvent to stay in sync with the broker,
// and reacts to each signal tick with zero or more ClientEvents.
type Executor interface {
	Update(event types.BrokerEvent)
	OnSignal(signal *Signal) []types.ClientEvent
}

// SignalExecuteStrategy wires a Signaler and an Executor together: every
// event updates the executor's state; Data events additionally feed the
// signaler, whose output drives the executor's reconciliation step.
type SignalExecuteStrategy struct {
	signaler Signaler
	executor Executor
}

// NewSignalExecuteStrategy builds the combinator from its two halves.
func NewSignalExecuteStrategy(signaler Signaler, executor Executor) *SignalExecuteStrategy {
	return &SignalExecuteStrategy{signaler: signaler, executor: executor}
}

func (s *SignalExecuteStrategy) OnEvent(event types.BrokerEvent) []types.ClientEvent {
	s.executor.Update(event)
	if event.Kind != types.EventData {
		return nil
	}
	signal := s.signaler.OnData(event.Data)
	return s.executor.OnSignal(signal)
}
