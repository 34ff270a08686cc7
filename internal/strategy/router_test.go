package strategy

import (
	"testing"

	"okx-trading-core/pkg/types"
)

type recordingStrategy struct {
	events []types.BrokerEvent
	out    []types.ClientEvent
}

func (s *recordingStrategy) OnEvent(event types.BrokerEvent) []types.ClientEvent {
	s.events = append(s.events, event)
	return s.out
}

func TestMultiInstrumentStrategyRoutesDataByInstrument(t *testing.T) {
	t.Parallel()
	btc := &recordingStrategy{}
	eth := &recordingStrategy{}
	router := NewMultiInstrumentStrategy(map[types.InstrumentID]Strategy{
		"BTC-USDT-SWAP": btc,
		"ETH-USDT-SWAP": eth,
	})

	router.OnEvent(types.DataEvent(types.Level1{Bbo: types.Bbo{InstrumentID: "BTC-USDT-SWAP"}}))

	if len(btc.events) != 1 {
		t.Fatalf("btc.events = %d, want 1", len(btc.events))
	}
	if len(eth.events) != 0 {
		t.Fatalf("eth.events = %d, want 0", len(eth.events))
	}
}

func TestMultiInstrumentStrategyRoutesCanceledToOrderOwner(t *testing.T) {
	t.Parallel()
	btc := &recordingStrategy{}
	router := NewMultiInstrumentStrategy(map[types.InstrumentID]Strategy{
		"BTC-USDT-SWAP": btc,
	})

	router.OnEvent(types.PlacedEvent(types.LimitOrder{OrderID: 7, InstrumentID: "BTC-USDT-SWAP"}))
	router.OnEvent(types.CanceledEvent(7))

	if len(btc.events) != 2 {
		t.Fatalf("btc.events = %d, want 2 (placed + canceled)", len(btc.events))
	}
	if btc.events[1].Kind != types.EventCanceled {
		t.Errorf("events[1].Kind = %v, want EventCanceled", btc.events[1].Kind)
	}
}

func TestMultiInstrumentStrategyDropsCanceledForUnknownOrder(t *testing.T) {
	t.Parallel()
	btc := &recordingStrategy{}
	router := NewMultiInstrumentStrategy(map[types.InstrumentID]Strategy{
		"BTC-USDT-SWAP": btc,
	})

	out := router.OnEvent(types.CanceledEvent(99))

	if out != nil {
		t.Errorf("OnEvent() = %v, want nil for unknown order", out)
	}
	if len(btc.events) != 0 {
		t.Errorf("btc.events = %d, want 0", len(btc.events))
	}
}
