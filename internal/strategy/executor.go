package strategy

import (
	"math"

	"okx-trading-core/pkg/types"
)

// NaiveLimitExecutor maintains at most one working limit order and a
// current Position for one instrument. On each signal tick it computes a
// target position from the signal (or a holding-duration timeout when the
// signal has gone quiet), derives the order needed to reach it, and
// reconciles that against whatever is currently working.
//
// Grounded on strategy/executors.rs's NaiveLimitExecutor, translated
// field-for-field; the reconciliation control flow ("compute desired state
// -> diff against working order -> cancel/place/amend") mirrors the
// teacher's maker.go quoteUpdate -> computeQuotes -> reconcileOrders
// pipeline with the pricing math replaced by the spec's target-position
// formulas.
type NaiveLimitExecutor struct {
	instrumentID types.InstrumentID
	notional     float64
	sizeDigits   int
	sizeEps      float64
	priceDigits  int
	// notionalThreshold is the minimum notional (0.05 * notional) an order
	// must clear to be worth placing.
	notionalThreshold float64
	priceOffset       float64

	bbo types.Bbo

	lastSignal *Signal
	// lastSignalTs is updated on every non-nil signal seen, per the
	// resolved Open Question (not merely on actionable signals).
	lastSignalTs    Timestamp
	holdingDuration uint64 // milliseconds

	lastEventTs   Timestamp
	eventInterval uint64 // milliseconds, the cooling window

	position     types.Position
	placedOrder  *types.LimitOrder
	orderIDs     *OrderIDAllocator
}

// NewNaiveLimitExecutor builds an executor for one instrument. holdingMs is
// the duration a position is held after its signal goes quiet before being
// closed; eventIntervalMs is the cooling window between emitted batches.
func NewNaiveLimitExecutor(
	instrumentID types.InstrumentID,
	notional float64,
	sizeDigits, priceDigits int,
	priceOffset float64,
	holdingMs, eventIntervalMs uint64,
	orderIDTag uint32,
) (*NaiveLimitExecutor, error) {
	allocator, err := NewOrderIDAllocator(orderIDTag)
	if err != nil {
		return nil, err
	}
	return &NaiveLimitExecutor{
		instrumentID:      instrumentID,
		notional:          notional,
		sizeDigits:        sizeDigits,
		sizeEps:           math.Pow(10, -float64(sizeDigits)),
		priceDigits:       priceDigits,
		notionalThreshold: 0.05 * notional,
		priceOffset:       priceOffset,
		holdingDuration:   holdingMs,
		eventInterval:     eventIntervalMs,
		orderIDs:          allocator,
	}, nil
}

func (e *NaiveLimitExecutor) Update(event types.BrokerEvent) {
	switch event.Kind {
	case types.EventData:
		e.bbo = event.Data.Bbo
	case types.EventFill:
		fill := event.Fill
		if e.placedOrder != nil && e.placedOrder.OrderID == fill.OrderID {
			switch fill.State {
			case types.Live:
				// no change
			case types.Partially:
				e.placedOrder.FilledSize = fill.AccFilledSize
			case types.Filled:
				e.placedOrder = nil
			}
		}
		if fill.Side == types.Buy {
			e.position.Size += fill.FilledSize
		} else {
			e.position.Size -= fill.FilledSize
		}
	}
}

func (e *NaiveLimitExecutor) getIdealPosition(signal *Signal) types.Position {
	if signal == nil {
		if e.position.IsClear(e.sizeDigits) {
			return e.position
		}
		if e.bbo.Ts-e.lastSignalTs >= e.holdingDuration {
			return types.Position{Size: 0}
		}
		return e.position
	}

	switch *signal {
	case Long:
		size := truncateF64(e.notional/e.bbo.BidPrice, e.sizeDigits)
		return types.Position{Size: size}
	default: // Short
		size := truncateF64(e.notional/e.bbo.AskPrice, e.sizeDigits)
		return types.Position{Size: -size}
	}
}

func (e *NaiveLimitExecutor) calcTargetOrderArg(target types.Position) (rawSize, price float64) {
	rawSize = target.Size - e.position.Size
	if rawSize > 0 {
		price = e.bbo.BidPrice + e.priceOffset
	} else {
		price = e.bbo.AskPrice - e.priceOffset
	}
	return rawSize, roundF64(price, e.priceDigits)
}

// genOrder builds a new LimitOrder from a signed raw size, or returns nil
// if the size rounds to zero or fails the notional floor.
func (e *NaiveLimitExecutor) genOrder(rawSize, price float64) *types.LimitOrder {
	if math.Abs(rawSize) < e.sizeEps {
		return nil
	}
	if math.Abs(rawSize)*price < e.notionalThreshold {
		return nil
	}
	side, size := sideSizeFromRaw(rawSize)
	return &types.LimitOrder{
		OrderID:      e.orderIDs.Next(),
		InstrumentID: e.instrumentID,
		Price:        price,
		Size:         size,
		Side:         side,
	}
}

// eventFromTargetOrder diffs the desired order (rawSize signed, at price)
// against whatever is currently working and returns the actions needed.
func (e *NaiveLimitExecutor) eventFromTargetOrder(rawSize, price float64) []types.ClientEvent {
	if e.placedOrder == nil {
		order := e.genOrder(rawSize, price)
		if order == nil {
			return nil
		}
		e.placedOrder = order
		return []types.ClientEvent{types.PlaceLimit(*order)}
	}

	if math.Abs(rawSize) < e.sizeEps {
		id := e.placedOrder.OrderID
		e.placedOrder = nil
		return []types.ClientEvent{types.CancelEvent(e.instrumentID, id)}
	}

	newSide, newSize := sideSizeFromRaw(rawSize)
	if newSide == e.placedOrder.Side {
		if math.Abs(e.placedOrder.Working()-newSize) >= e.sizeEps || e.placedOrder.Price != price {
			e.placedOrder.Size = e.placedOrder.FilledSize + newSize
			e.placedOrder.Price = price
			return []types.ClientEvent{types.AmendEvent(types.AmendOrder{
				OrderID:      e.placedOrder.OrderID,
				InstrumentID: e.instrumentID,
				NewSize:      e.placedOrder.Size,
				NewPrice:     e.placedOrder.Price,
			})}
		}
		return nil
	}

	oldID := e.placedOrder.OrderID
	events := []types.ClientEvent{types.CancelEvent(e.instrumentID, oldID)}
	order := e.genOrder(rawSize, price)
	e.placedOrder = order
	if order != nil {
		events = append(events, types.PlaceLimit(*order))
	}
	return events
}

func (e *NaiveLimitExecutor) OnSignal(signal *Signal) []types.ClientEvent {
	if signal != nil {
		e.lastSignalTs = e.bbo.Ts
	}
	if e.bbo.Ts-e.lastEventTs < e.eventInterval {
		return nil
	}

	ideal := e.getIdealPosition(signal)
	rawSize, price := e.calcTargetOrderArg(ideal)
	events := e.eventFromTargetOrder(rawSize, price)

	e.lastSignal = signal
	if len(events) > 0 {
		e.lastEventTs = e.bbo.Ts
	}

	return events
}
