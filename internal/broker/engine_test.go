package broker

import (
	"context"
	"errors"
	"testing"

	"okx-trading-core/internal/stream"
	"okx-trading-core/pkg/types"
)

type scriptedBroker struct {
	events []types.BrokerEvent
	pos    int
	sent   [][]types.ClientEvent
	failAt int
}

func (b *scriptedBroker) Next(ctx context.Context) (types.BrokerEvent, bool, error) {
	if b.pos >= len(b.events) {
		return types.BrokerEvent{}, false, nil
	}
	ev := b.events[b.pos]
	b.pos++
	return ev, true, nil
}

func (b *scriptedBroker) Send(ctx context.Context, events []types.ClientEvent) error {
	if b.failAt > 0 && len(b.sent) == b.failAt-1 {
		return errors.New("send failed")
	}
	b.sent = append(b.sent, events)
	return nil
}

type echoOnDataStrategy struct {
	seen int
}

func (s *echoOnDataStrategy) OnEvent(event types.BrokerEvent) []types.ClientEvent {
	s.seen++
	if event.Kind != types.EventData {
		return nil
	}
	return []types.ClientEvent{types.CancelEvent(testInstrument, 1)}
}

func TestEngineRunDeliversEventsAndStopsOnStreamEnd(t *testing.T) {
	t.Parallel()
	b := &scriptedBroker{events: []types.BrokerEvent{
		types.DataEvent(level1(0, 100, 101)),
		types.FillEvent(types.Fill{OrderID: 1}),
		types.DataEvent(level1(1000, 100, 101)),
	}}
	s := &echoOnDataStrategy{}
	engine := NewEngine(b, s)

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.seen != 3 {
		t.Errorf("strategy saw %d events, want 3", s.seen)
	}
	if len(b.sent) != 2 {
		t.Fatalf("broker.sent has %d batches, want 2 (one per Data event)", len(b.sent))
	}
}

func TestEngineRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	b := &scriptedBroker{events: []types.BrokerEvent{types.DataEvent(level1(0, 100, 101))}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewEngine(b, &echoOnDataStrategy{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestEngineRunPropagatesSendError(t *testing.T) {
	t.Parallel()
	b := &scriptedBroker{
		events: []types.BrokerEvent{
			types.DataEvent(level1(0, 100, 101)),
			types.DataEvent(level1(1000, 100, 101)),
		},
		failAt: 1,
	}
	err := NewEngine(b, &echoOnDataStrategy{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected Run to propagate the Send error")
	}
}

// buyOnceStrategy places a single market buy the first time it sees a Data
// event and does nothing afterward, exercising the Engine against a real
// SandboxBroker end to end.
type buyOnceStrategy struct {
	placed bool
}

func (s *buyOnceStrategy) OnEvent(event types.BrokerEvent) []types.ClientEvent {
	if event.Kind != types.EventData || s.placed {
		return nil
	}
	s.placed = true
	return []types.ClientEvent{
		types.PlaceMarket(types.MarketOrder{OrderID: 1, InstrumentID: testInstrument, Size: 1.0, Side: types.Buy}),
	}
}

func TestEngineDrivesSandboxBrokerEndToEnd(t *testing.T) {
	t.Parallel()
	source := stream.NewSliceSource([]types.Level1{
		level1(0, 50000, 50001),
		level1(1000, 50000, 50001),
	})
	sandbox, err := NewSandboxBroker(context.Background(), source, []types.InstrumentID{testInstrument}, 100000, TransactionCostModel{}, 60_000)
	if err != nil {
		t.Fatalf("NewSandboxBroker: %v", err)
	}
	strat := &buyOnceStrategy{}

	if err := NewEngine(sandbox, strat).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strat.placed {
		t.Fatal("strategy never placed its order")
	}
	if got := sandbox.Position(testInstrument).Size; got != 1.0 {
		t.Errorf("Position().Size = %v, want 1.0", got)
	}
}
