package strategy

import (
	"testing"

	"okx-trading-core/pkg/types"
)

const testInstrument types.InstrumentID = "TEST-USDT-SWAP"

func newTestExecutor(t *testing.T) *NaiveLimitExecutor {
	t.Helper()
	e, err := NewNaiveLimitExecutor(testInstrument, 1000.0, 2, 2, 0, 10_000, 0, 123)
	if err != nil {
		t.Fatalf("NewNaiveLimitExecutor: %v", err)
	}
	return e
}

func testBbo(ts types.Timestamp, bidPrice, askPrice float64) types.Bbo {
	return types.Bbo{Ts: ts, InstrumentID: testInstrument, BidPrice: bidPrice, BidSize: 10, AskPrice: askPrice, AskSize: 10}
}

func sig(s Signal) *Signal { return &s }

func TestNewExecutorDefaults(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	if e.notional != 1000.0 || e.sizeDigits != 2 || e.sizeEps != 0.01 || e.holdingDuration != 10_000 {
		t.Fatalf("unexpected defaults: %+v", e)
	}
}

func TestExecutorLongSignal(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))

	events := e.OnSignal(sig(Long))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	order := events[0].Limit
	if events[0].Kind != types.ClientPlaceLimit {
		t.Fatalf("kind = %v, want PlaceLimit", events[0].Kind)
	}
	if order.Side != types.Buy || order.Price != 100.0 || order.Size != 10.0 {
		t.Errorf("order = %+v, want buy 10.0 @ 100.0", order)
	}
}

func TestExecutorShortSignal(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))

	events := e.OnSignal(sig(Short))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	order := events[0].Limit
	if order.Side != types.Sell || order.Price != 101.0 || order.Size != 9.90 {
		t.Errorf("order = %+v, want sell 9.90 @ 101.0", order)
	}
}

func TestExecutorSignalChangeCancelsAndReplaces(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))

	events := e.OnSignal(sig(Long))
	orderID := events[0].Limit.OrderID

	events = e.OnSignal(sig(Short))
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2 (cancel + place)", len(events))
	}
	if events[0].Kind != types.ClientCancel || events[0].CancelID != orderID {
		t.Fatalf("events[0] = %+v, want CancelOrder(%d)", events[0], orderID)
	}
	if events[1].Kind != types.ClientPlaceLimit || events[1].Limit.Side != types.Sell || events[1].Limit.Price != 101.0 {
		t.Errorf("events[1] = %+v, want a sell limit @ 101.0", events[1])
	}
}

func TestExecutorFillHandling(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))

	events := e.OnSignal(sig(Long))
	orderID := events[0].Limit.OrderID

	e.Update(types.FillEvent(types.Fill{
		OrderID: orderID, InstrumentID: testInstrument,
		FilledSize: 10.0, AccFilledSize: 10.0, Price: 100.0,
		Side: types.Buy, ExecType: types.Maker, State: types.Filled,
	}))
	if e.placedOrder != nil {
		t.Fatal("placedOrder should be nil after a terminal fill")
	}

	events = e.OnSignal(sig(Short))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	order := events[0].Limit
	if order.Side != types.Sell || order.Size != 19.90 {
		t.Errorf("order = %+v, want sell 19.90 (position 10.0 + short 9.90)", order)
	}
}

func TestExecutorPartialFill(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))

	events := e.OnSignal(sig(Long))
	orderID := events[0].Limit.OrderID

	e.Update(types.FillEvent(types.Fill{
		OrderID: orderID, InstrumentID: testInstrument,
		FilledSize: 5.0, AccFilledSize: 5.0, Price: 100.0,
		Side: types.Buy, ExecType: types.Maker, State: types.Partially,
	}))
	if e.placedOrder == nil || e.placedOrder.FilledSize != 5.0 {
		t.Fatalf("placedOrder = %+v, want FilledSize 5.0", e.placedOrder)
	}

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(2000, 102.0, 103.0)}))
	events = e.OnSignal(sig(Long))
	if len(events) != 1 || events[0].Kind != types.ClientAmend {
		t.Fatalf("events = %+v, want a single AmendOrder", events)
	}
}

func TestExecutorPositionTimeout(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)
	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))
	events := e.OnSignal(sig(Long))
	orderID := events[0].Limit.OrderID

	e.Update(types.FillEvent(types.Fill{
		OrderID: orderID, InstrumentID: testInstrument,
		FilledSize: 10.0, AccFilledSize: 10.0, Price: 100.0,
		Side: types.Buy, ExecType: types.Maker, State: types.Filled,
	}))

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(5000, 102.0, 103.0)}))
	if events := e.OnSignal(nil); len(events) != 0 {
		t.Fatalf("events = %v, want none within holding period", events)
	}

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(12000, 102.0, 103.0)}))
	events = e.OnSignal(nil)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1 (close position)", len(events))
	}
	order := events[0].Limit
	if order.Side != types.Sell || order.Size != 10.0 || order.Price != 103.0 {
		t.Errorf("order = %+v, want sell 10.0 @ 103.0", order)
	}
}

func TestExecutorComplexScenario(t *testing.T) {
	t.Parallel()
	e := newTestExecutor(t)

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(1000, 100.0, 101.0)}))
	events := e.OnSignal(sig(Long))
	if len(events) != 1 {
		t.Fatalf("step 2: len(events) = %d, want 1", len(events))
	}
	buyOrderID := events[0].Limit.OrderID
	if !(events[0].Limit.Side == types.Buy && events[0].Limit.Price == 100.0 && events[0].Limit.Size == 10.0) {
		t.Fatalf("step 2: order = %+v", events[0].Limit)
	}

	e.Update(types.FillEvent(types.Fill{
		OrderID: buyOrderID, InstrumentID: testInstrument,
		FilledSize: 4.0, AccFilledSize: 4.0, Price: 100.0,
		Side: types.Buy, ExecType: types.Maker, State: types.Partially,
	}))
	if e.position.Size != 4.0 {
		t.Fatalf("step 3: position = %v, want 4.0", e.position.Size)
	}

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(2000, 99.0, 100.0)}))
	events = e.OnSignal(sig(Short))
	if len(events) != 2 {
		t.Fatalf("step 5: len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != types.ClientCancel || events[0].CancelID != buyOrderID {
		t.Fatalf("step 5: events[0] = %+v", events[0])
	}
	sellOrderID := events[1].Limit.OrderID
	if !(events[1].Limit.Side == types.Sell && events[1].Limit.Price == 100.0 && events[1].Limit.Size == 14.0) {
		t.Fatalf("step 5: order = %+v, want sell 14.0 @ 100.0", events[1].Limit)
	}

	e.Update(types.FillEvent(types.Fill{
		OrderID: sellOrderID, InstrumentID: testInstrument,
		FilledSize: 8.0, AccFilledSize: 8.0, Price: 100.0,
		Side: types.Sell, ExecType: types.Maker, State: types.Partially,
	}))
	if e.position.Size != -4.0 {
		t.Fatalf("step 6: position = %v, want -4.0", e.position.Size)
	}

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(3000, 98.0, 99.0)}))
	events = e.OnSignal(nil)
	if len(events) != 1 || events[0].Kind != types.ClientCancel || events[0].CancelID != sellOrderID {
		t.Fatalf("step 8: events = %+v, want cancel of the working sell order", events)
	}

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(15000, 97.0, 98.0)}))
	events = e.OnSignal(nil)
	if len(events) != 1 {
		t.Fatalf("step 10: len(events) = %d, want 1 (close)", len(events))
	}
	closeOrderID := events[0].Limit.OrderID
	if !(events[0].Limit.Side == types.Buy && events[0].Limit.Price == 97.0 && events[0].Limit.Size == 4.0) {
		t.Fatalf("step 10: order = %+v, want buy 4.0 @ 97.0", events[0].Limit)
	}

	e.Update(types.FillEvent(types.Fill{
		OrderID: closeOrderID, InstrumentID: testInstrument,
		FilledSize: 4.0, AccFilledSize: 4.0, Price: 97.0,
		Side: types.Buy, ExecType: types.Maker, State: types.Filled,
	}))

	e.Update(types.DataEvent(types.Level1{Bbo: testBbo(16000, 96.0, 97.0)}))
	if e.position.Size != 0.0 {
		t.Fatalf("step 13: position = %v, want 0.0", e.position.Size)
	}

	events = e.OnSignal(sig(Long))
	if len(events) != 1 {
		t.Fatalf("step 14: len(events) = %d, want 1", len(events))
	}
	if !(events[0].Limit.Side == types.Buy && events[0].Limit.Price == 96.0 && events[0].Limit.Size == 10.41) {
		t.Fatalf("step 14: order = %+v, want buy 10.41 @ 96.0", events[0].Limit)
	}
}
