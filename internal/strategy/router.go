package strategy

import (
	"okx-trading-core/pkg/types"
)

// MultiInstrumentStrategy fans a single BrokerEvent stream out to one
// independent Strategy per instrument, the way Portfolio fans positions
// out by instrument_id. Every strategy adapted so far (OfiMomentum,
// NaiveLimitExecutor) carries state for exactly one instrument, matching
// spec.md's "small enumerated set of venue symbols" — this is the
// combinator that lets cmd/live/cmd/backtest run the configured set
// without teaching the signal/executor pair about instrument routing.
//
// Canceled events carry only an OrderID, no instrument — the router
// remembers which instrument placed each order (from Placed/Amended) and
// routes the matching Canceled event there; an order it never saw placed
// is dropped rather than guessed at.
type MultiInstrumentStrategy struct {
	byInstrument map[types.InstrumentID]Strategy
	orderOwner   map[types.OrderID]types.InstrumentID
}

// NewMultiInstrumentStrategy builds a router over one Strategy per
// instrument.
func NewMultiInstrumentStrategy(byInstrument map[types.InstrumentID]Strategy) *MultiInstrumentStrategy {
	return &MultiInstrumentStrategy{
		byInstrument: byInstrument,
		orderOwner:   make(map[types.OrderID]types.InstrumentID),
	}
}

func (r *MultiInstrumentStrategy) OnEvent(event types.BrokerEvent) []types.ClientEvent {
	var inst types.InstrumentID
	switch event.Kind {
	case types.EventData:
		inst = event.Data.InstrumentID
	case types.EventFill:
		inst = event.Fill.InstrumentID
	case types.EventPlaced, types.EventAmended:
		inst = event.Order.InstrumentID
		r.orderOwner[event.Order.OrderID] = inst
	case types.EventCanceled:
		owner, ok := r.orderOwner[event.Canceled]
		if !ok {
			return nil
		}
		inst = owner
		delete(r.orderOwner, event.Canceled)
	}

	s, ok := r.byInstrument[inst]
	if !ok {
		return nil
	}
	return s.OnEvent(event)
}
