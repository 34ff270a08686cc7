// Package types defines the shared data model for the trading core — the
// vocabulary that flows between the stream adapters, the venue codec, the
// brokers, and the strategy engine. It has no dependencies on internal
// packages, so it can be imported by any layer.
package types

import "fmt"

// ————————————————————————————————————————————————————————————————————————
// Instrument
// ————————————————————————————————————————————————————————————————————————

// InstrumentID identifies a tradeable perpetual-swap symbol.
type InstrumentID string

const (
	EthUsdtSwap InstrumentID = "ETH-USDT-SWAP"
	BtcUsdtSwap InstrumentID = "BTC-USDT-SWAP"
)

// InstrumentProfile holds the static precision metadata for an instrument.
// Profiles are loaded once at startup and never mutated afterward.
type InstrumentProfile struct {
	SizeDigits  int     // decimal places for quantity
	PriceDigits int     // decimal places for price
	SizeScale   float64 // contract-to-base-unit multiplier
}

// Timestamp is unsigned milliseconds since the Unix epoch. It is monotonic
// per data source but not assumed monotonic across merged sources.
type Timestamp = uint64

// Side is the direction of an order or fill: true means buy.
type Side bool

const (
	Buy  Side = true
	Sell Side = false
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ————————————————————————————————————————————————————————————————————————
// Market data
// ————————————————————————————————————————————————————————————————————————

// Trade is a single executed print on the venue's public tape.
type Trade struct {
	Ts           Timestamp
	InstrumentID InstrumentID
	TradeID      string
	Price        float64
	Size         float64
	Side         Side
	OrderCount   int32
}

func (t Trade) GetTs() Timestamp { return t.Ts }

// Bbo is the best bid and offer for an instrument at a point in time.
// Invariant: BidPrice <= AskPrice whenever both are non-zero; sizes are
// non-negative.
type Bbo struct {
	Ts           Timestamp
	InstrumentID InstrumentID
	BidPrice     float64
	BidSize      float64
	AskPrice     float64
	AskSize      float64
}

func (b Bbo) GetTs() Timestamp { return b.Ts }

// Mid returns the unbiased midpoint of the quote.
func (b Bbo) Mid() float64 {
	return (b.BidPrice + b.AskPrice) / 2
}

// Spread returns the absolute distance between ask and bid.
func (b Bbo) Spread() float64 {
	return b.AskPrice - b.BidPrice
}

// Level1 is a derived market-data entity: a Bbo plus volume accumulated
// since the previous Bbo (volume-weighted last price, total/buy/sell
// volume).
type Level1 struct {
	Bbo
	LastPrice float64 // volume-weighted last trade price since the previous Bbo
	Volume    float64 // total traded volume since the previous Bbo
	BuyVolume float64 // volume traded at the buy side since the previous Bbo
	SellVolume float64 // volume traded at the sell side since the previous Bbo
}

// ————————————————————————————————————————————————————————————————————————
// Orders
// ————————————————————————————————————————————————————————————————————————

// OrderID is a 64-bit identifier: the low 16 bits are a per-strategy-
// instance tag, the high 48 bits a monotonic counter within that instance.
// This split guarantees uniqueness across concurrently running strategy
// instances that share one account.
type OrderID uint64

const tagBits = 16
const tagMask = (uint64(1) << tagBits) - 1

// NewOrderID packs a monotonic counter and an instance tag into one id.
// tag is a uint16, so it always fits the low 16 bits; NewOrderID does not
// validate or panic. Counter bits above bit 47 are shifted out.
// NewOrderIDAllocator rejects tags that do not fit in 16 bits.
func NewOrderID(counter uint64, tag uint16) OrderID {
	return OrderID((counter << tagBits) | uint64(tag))
}

// Tag extracts the low-16-bit instance tag.
func (o OrderID) Tag() uint16 {
	return uint16(uint64(o) & tagMask)
}

// Counter extracts the high-48-bit monotonic counter.
func (o OrderID) Counter() uint64 {
	return uint64(o) >> tagBits
}

// MarketOrder executes immediately at the opposite side's touch price.
type MarketOrder struct {
	OrderID      OrderID
	InstrumentID InstrumentID
	Size         float64 // > 0
	Side         Side
}

// LimitOrder rests on the book until matched, amended, or cancelled.
// Invariant: FilledSize <= Size. Size-FilledSize is the working quantity.
type LimitOrder struct {
	OrderID      OrderID
	InstrumentID InstrumentID
	Price        float64 // > 0
	Size         float64 // > 0
	FilledSize   float64 // >= 0
	Side         Side
}

// Working returns the unfilled quantity still resting on the book.
func (l LimitOrder) Working() float64 {
	return l.Size - l.FilledSize
}

// AmendOrder replaces a resting limit order's price and size while
// preserving its OrderID. The resulting working quantity is
// NewSize-FilledSize.
type AmendOrder struct {
	OrderID      OrderID
	InstrumentID InstrumentID
	NewSize      float64
	NewPrice     float64
}

// ExecType records whether a fill crossed the spread (Taker) or rested and
// was matched (Maker).
type ExecType int

const (
	Taker ExecType = iota
	Maker
)

func (e ExecType) String() string {
	if e == Taker {
		return "taker"
	}
	return "maker"
}

// FillState is the lifecycle state of the order a fill belongs to.
type FillState int

const (
	Live FillState = iota
	Partially
	Filled
)

// Fill records one execution against a working order. AccFilledSize is
// cumulative over the order's entire life.
type Fill struct {
	OrderID        OrderID
	InstrumentID   InstrumentID
	FilledSize     float64
	AccFilledSize  float64
	Price          float64
	Side           Side
	ExecType       ExecType
	State          FillState
}

// ————————————————————————————————————————————————————————————————————————
// Position & Portfolio
// ————————————————————————————————————————————————————————————————————————

// Position is a signed quantity for one instrument. Positive is long,
// negative is short.
type Position struct {
	Size float64
}

// IsClear reports whether the position is effectively zero given the
// instrument's size precision.
func (p Position) IsClear(sizeDigits int) bool {
	threshold := 1.0
	for i := 0; i < sizeDigits; i++ {
		threshold /= 10
	}
	return absF(p.Size) < threshold
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Portfolio maps InstrumentID to Position. Entries whose |size| drops
// below 1e-12 are removed — a Portfolio never retains a zero-sized entry.
type Portfolio struct {
	positions map[InstrumentID]Position
}

// NewPortfolio returns an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{positions: make(map[InstrumentID]Position)}
}

const portfolioZeroEpsilon = 1e-12

// ApplyFill updates the position for a fill's instrument: size increases
// on a buy fill, decreases on a sell fill.
func (p *Portfolio) ApplyFill(f Fill) {
	pos := p.positions[f.InstrumentID]
	if f.Side == Buy {
		pos.Size += f.FilledSize
	} else {
		pos.Size -= f.FilledSize
	}
	if absF(pos.Size) < portfolioZeroEpsilon {
		delete(p.positions, f.InstrumentID)
		return
	}
	p.positions[f.InstrumentID] = pos
}

// Position returns the current position for an instrument (zero value if
// none is held).
func (p *Portfolio) Position(id InstrumentID) Position {
	return p.positions[id]
}

// Value returns cash plus the mark-to-market value of every held position,
// using the supplied price lookup for instruments not found returns 0.
func (p *Portfolio) Value(cash float64, markPrice func(InstrumentID) float64) float64 {
	total := cash
	for id, pos := range p.positions {
		total += pos.Size * markPrice(id)
	}
	return total
}

// Instruments returns the set of instruments with a non-zero position.
func (p *Portfolio) Instruments() []InstrumentID {
	out := make([]InstrumentID, 0, len(p.positions))
	for id := range p.positions {
		out = append(out, id)
	}
	return out
}

// ————————————————————————————————————————————————————————————————————————
// Broker <-> Strategy event vocabulary
// ————————————————————————————————————————————————————————————————————————

// BrokerEventKind discriminates the variants of BrokerEvent.
type BrokerEventKind int

const (
	EventData BrokerEventKind = iota
	EventFill
	EventPlaced
	EventAmended
	EventCanceled
)

// BrokerEvent flows from the broker to the strategy. Exactly one of the
// payload fields is meaningful, selected by Kind.
type BrokerEvent struct {
	Kind     BrokerEventKind
	Data     Level1
	Fill     Fill
	Order    LimitOrder // for Placed/Amended
	Canceled OrderID    // for Canceled
}

func DataEvent(d Level1) BrokerEvent      { return BrokerEvent{Kind: EventData, Data: d} }
func FillEvent(f Fill) BrokerEvent        { return BrokerEvent{Kind: EventFill, Fill: f} }
func PlacedEvent(o LimitOrder) BrokerEvent { return BrokerEvent{Kind: EventPlaced, Order: o} }
func AmendedEvent(o LimitOrder) BrokerEvent {
	return BrokerEvent{Kind: EventAmended, Order: o}
}
func CanceledEvent(id OrderID) BrokerEvent { return BrokerEvent{Kind: EventCanceled, Canceled: id} }

func (e BrokerEvent) String() string {
	switch e.Kind {
	case EventData:
		return fmt.Sprintf("Data(%s@%d)", e.Data.InstrumentID, e.Data.Ts)
	case EventFill:
		return fmt.Sprintf("Fill(%d %s %.6f@%.6f)", e.Fill.OrderID, e.Fill.Side, e.Fill.FilledSize, e.Fill.Price)
	case EventPlaced:
		return fmt.Sprintf("Placed(%d)", e.Order.OrderID)
	case EventAmended:
		return fmt.Sprintf("Amended(%d)", e.Order.OrderID)
	case EventCanceled:
		return fmt.Sprintf("Canceled(%d)", e.Canceled)
	default:
		return "Unknown"
	}
}

// ClientEventKind discriminates the variants of ClientEvent.
type ClientEventKind int

const (
	ClientPlaceMarket ClientEventKind = iota
	ClientPlaceLimit
	ClientAmend
	ClientCancel
)

// ClientEvent flows from the strategy to the broker.
type ClientEvent struct {
	Kind         ClientEventKind
	Market       MarketOrder
	Limit        LimitOrder
	Amend        AmendOrder
	InstrumentID InstrumentID // for Cancel
	CancelID     OrderID      // for Cancel
}

func PlaceMarket(o MarketOrder) ClientEvent { return ClientEvent{Kind: ClientPlaceMarket, Market: o} }
func PlaceLimit(o LimitOrder) ClientEvent   { return ClientEvent{Kind: ClientPlaceLimit, Limit: o} }
func AmendEvent(a AmendOrder) ClientEvent   { return ClientEvent{Kind: ClientAmend, Amend: a} }
func CancelEvent(instID InstrumentID, id OrderID) ClientEvent {
	return ClientEvent{Kind: ClientCancel, InstrumentID: instID, CancelID: id}
}
