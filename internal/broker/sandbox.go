package broker

import (
	"context"
	"fmt"

	"okx-trading-core/internal/report"
	"okx-trading-core/internal/stream"
	"okx-trading-core/pkg/types"
)

// SandboxBroker is a deterministic, single-threaded simulation broker: it
// turns a historical/synthetic types.Level1 stream into BrokerEvents and
// absorbs ClientEvents against an in-memory matcher. It is the BboBroker
// of backtest.rs, translated: same state (working limit orders, latest
// BBO per instrument, a FIFO broker-event buffer, cash/portfolio/clock)
// and the same initialization-drain, extended per spec.md with
// Placed/Amended/Canceled acks, a TransactionCostModel and a Reporter
// that backtest.rs's simpler sandbox never wired.
type SandboxBroker struct {
	source stream.Source[types.Level1]

	limitOrders map[types.OrderID]types.LimitOrder
	instBbo     map[types.InstrumentID]types.Bbo
	eventBuf    []types.BrokerEvent

	cash      float64
	portfolio *types.Portfolio
	currentTs types.Timestamp
	costModel TransactionCostModel
	reporter  *report.Reporter
}

// NewSandboxBroker drains source until every instrument in instruments has
// been seen at least once, seeding the per-instrument BBO table and the
// reporter's first sample, then returns the ready broker.
func NewSandboxBroker(
	ctx context.Context,
	source stream.Source[types.Level1],
	instruments []types.InstrumentID,
	startingCash float64,
	costModel TransactionCostModel,
	reportFrequencyMs uint64,
) (*SandboxBroker, error) {
	b := &SandboxBroker{
		source:      source,
		limitOrders: make(map[types.OrderID]types.LimitOrder),
		instBbo:     make(map[types.InstrumentID]types.Bbo),
		cash:        startingCash,
		portfolio:   types.NewPortfolio(),
		costModel:   costModel,
		reporter:    report.NewReporter(reportFrequencyMs),
	}

	pending := make(map[types.InstrumentID]struct{}, len(instruments))
	for _, id := range instruments {
		pending[id] = struct{}{}
	}

	var lastTs types.Timestamp
	for len(pending) > 0 {
		item, ok, err := source.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("broker: init drain: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("broker: data source ended during init before every instrument had a BBO")
		}
		b.instBbo[item.InstrumentID] = item.Bbo
		delete(pending, item.InstrumentID)
		lastTs = item.Ts
	}

	b.currentTs = lastTs
	b.reporter.Insert(lastTs, b.portfolioValue())
	return b, nil
}

func (b *SandboxBroker) portfolioValue() float64 {
	return b.portfolio.Value(b.cash, func(id types.InstrumentID) float64 {
		return b.instBbo[id].Mid()
	})
}

func (b *SandboxBroker) applyFill(fill types.Fill) {
	cost := b.costModel.Cost(fill.Price, fill.FilledSize, fill.Side, fill.ExecType)
	b.cash -= cost
	if fill.Side == types.Buy {
		b.cash -= fill.Price * fill.FilledSize
	} else {
		b.cash += fill.Price * fill.FilledSize
	}
	b.portfolio.ApplyFill(fill)
	b.reporter.Insert(b.currentTs, b.portfolioValue())
}

// matchWorkingOrders checks every resting limit order as a maker fill
// against the latest BBO, appending a Fill event and removing the order
// for every one that crosses.
func (b *SandboxBroker) matchWorkingOrders() {
	for id, order := range b.limitOrders {
		bbo, ok := b.instBbo[order.InstrumentID]
		if !ok {
			continue
		}
		fill, filled := tryFillLimitOrder(order, bbo, types.Maker)
		if !filled {
			continue
		}
		b.applyFill(fill)
		b.eventBuf = append(b.eventBuf, types.FillEvent(fill))
		delete(b.limitOrders, id)
	}
}

// Next implements Broker: drain the pending event buffer first; otherwise
// advance the clock with the next market-data item, queue the Data event,
// then match working orders against the new BBO and queue any resulting
// Fills behind it, and return the buffer's head.
//
// Note: this queues Data ahead of the Fills its own BBO update triggers —
// the literal end-to-end fixtures in the spec's scenario corpus pin this
// ordering, even though the prose description of the data step reads
// Fill-then-Data; see DESIGN.md.
func (b *SandboxBroker) Next(ctx context.Context) (types.BrokerEvent, bool, error) {
	if len(b.eventBuf) > 0 {
		ev := b.eventBuf[0]
		b.eventBuf = b.eventBuf[1:]
		return ev, true, nil
	}

	item, ok, err := b.source.Next(ctx)
	if err != nil {
		return types.BrokerEvent{}, false, err
	}
	if !ok {
		b.reporter.End()
		return types.BrokerEvent{}, false, nil
	}

	b.currentTs = item.Ts
	b.instBbo[item.InstrumentID] = item.Bbo
	b.eventBuf = append(b.eventBuf, types.DataEvent(item))
	b.matchWorkingOrders()
	b.reporter.Insert(item.Ts, b.portfolioValue())

	ev := b.eventBuf[0]
	b.eventBuf = b.eventBuf[1:]
	return ev, true, nil
}

// Send implements Broker: apply every ClientEvent against the matcher,
// queuing the resulting acks/fills for delivery on subsequent Next calls.
func (b *SandboxBroker) Send(ctx context.Context, events []types.ClientEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, ev := range events {
		switch ev.Kind {
		case types.ClientPlaceMarket:
			order := ev.Market
			bbo, ok := b.instBbo[order.InstrumentID]
			if !ok {
				return fmt.Errorf("broker: no BBO for instrument %s", order.InstrumentID)
			}
			fill := fillMarketOrder(order, bbo)
			b.applyFill(fill)
			b.eventBuf = append(b.eventBuf, types.FillEvent(fill))

		case types.ClientPlaceLimit:
			order := ev.Limit
			bbo, ok := b.instBbo[order.InstrumentID]
			if !ok {
				return fmt.Errorf("broker: no BBO for instrument %s", order.InstrumentID)
			}
			if fill, filled := tryFillLimitOrder(order, bbo, types.Taker); filled {
				b.applyFill(fill)
				b.eventBuf = append(b.eventBuf, types.FillEvent(fill))
			} else {
				b.limitOrders[order.OrderID] = order
				b.eventBuf = append(b.eventBuf, types.PlacedEvent(order))
			}

		case types.ClientAmend:
			a := ev.Amend
			if old, ok := b.limitOrders[a.OrderID]; ok {
				old.Price = a.NewPrice
				old.Size = a.NewSize
				b.limitOrders[a.OrderID] = old
				b.eventBuf = append(b.eventBuf, types.AmendedEvent(old))
			}

		case types.ClientCancel:
			delete(b.limitOrders, ev.CancelID)
			b.eventBuf = append(b.eventBuf, types.CanceledEvent(ev.CancelID))
		}
	}
	return nil
}

// Cash returns the current simulated cash balance.
func (b *SandboxBroker) Cash() float64 { return b.cash }

// Position returns the current position for an instrument.
func (b *SandboxBroker) Position(id types.InstrumentID) types.Position {
	return b.portfolio.Position(id)
}

// Reporter exposes the equity-curve reporter for CSV export after a run.
func (b *SandboxBroker) Reporter() *report.Reporter { return b.reporter }
