// Package store describes the persisted-history contract: the two table
// schemas OKX trade/BBO ticks are written to, and the query surface a
// backtest reads them back through. It deliberately stops at the contract —
// no SQL driver is wired here; a concrete Postgres-backed implementation is
// an external collaborator of this module, not a dependency it carries.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"okx-trading-core/internal/okx"
	"okx-trading-core/internal/stream"
	"okx-trading-core/pkg/types"
)

// TradeRow mirrors the okx_trades table:
//
//	okx_trades(ts i64, instrument_id text, trade_id text, price f64,
//	            size f64, side bool, order_count i32)
//
// Price/Size use decimal.Decimal rather than float64: these fields round
// trip through a SQL NUMERIC column, where exactness under repeated
// insert/query matters more than the arithmetic convenience float64 gives
// the in-process matcher and strategy code.
type TradeRow struct {
	Ts           types.Timestamp
	InstrumentID types.InstrumentID
	TradeID      string
	Price        decimal.Decimal
	Size         decimal.Decimal
	Side         types.Side
	OrderCount   int32
}

// BboRow mirrors the okx_bbo table:
//
//	okx_bbo(ts i64, instrument_id text, price_ask f64, size_ask f64,
//	         order_count_ask i32, price_bid f64, size_bid f64,
//	         order_count_bid i32)
type BboRow struct {
	Ts            types.Timestamp
	InstrumentID  types.InstrumentID
	PriceAsk      decimal.Decimal
	SizeAsk       decimal.Decimal
	OrderCountAsk int32
	PriceBid      decimal.Decimal
	SizeBid       decimal.Decimal
	OrderCountBid int32
}

// QueryOption scopes a history query: which instruments, and an optional
// half-open [Start, End) time window. A nil Start or End leaves that side
// of the window unbounded.
type QueryOption struct {
	Instruments []types.InstrumentID
	Start       *time.Time
	End         *time.Time
}

// RecordKind tags which of Trade/Bbo a HistoryRecord carries.
type RecordKind int

const (
	RecordTrade RecordKind = iota
	RecordBbo
)

// HistoryRecord is one time-ascending row out of a Query, already decoded
// from its SQL row shape into the shared domain types (types.Trade /
// types.Bbo) used everywhere else in the module.
type HistoryRecord struct {
	Kind  RecordKind
	Trade types.Trade
	Bbo   types.Bbo
}

// GetTs lets a stream of HistoryRecord feed stream.Merge directly.
func (r HistoryRecord) GetTs() uint64 {
	if r.Kind == RecordTrade {
		return r.Trade.Ts
	}
	return r.Bbo.Ts
}

// HistoryStore is the persisted-history contract: best-effort inserts (both
// use ON CONFLICT DO NOTHING semantics at the SQL layer, so a duplicate
// trade_id or (ts, instrument_id) pair is silently ignored, not an error)
// and a time-ascending query. Insert failures are a Persistence error per
// the spec's error taxonomy: logged, ingestion continues.
type HistoryStore interface {
	InsertTrade(ctx context.Context, row TradeRow) error
	InsertBBO(ctx context.Context, row BboRow) error
	Query(ctx context.Context, opt QueryOption) (stream.Source[HistoryRecord], error)
}

// MergeLevel1 folds a time-ascending HistoryRecord stream into a stream of
// derived Level1 snapshots, using the same accumulator the live venue codec
// uses to derive Level1 from trades+BBO, so replay and live ingestion
// compute Level1 identically.
func MergeLevel1(src stream.Source[HistoryRecord]) stream.Source[types.Level1] {
	return &level1Source{src: src, acc: okx.NewLevel1Accumulator()}
}

type level1Source struct {
	src stream.Source[HistoryRecord]
	acc *okx.Level1Accumulator
}

func (s *level1Source) Next(ctx context.Context) (types.Level1, bool, error) {
	for {
		rec, ok, err := s.src.Next(ctx)
		if err != nil || !ok {
			return types.Level1{}, false, err
		}
		switch rec.Kind {
		case RecordTrade:
			s.acc.PushTrade(rec.Trade)
		case RecordBbo:
			return s.acc.PushBbo(rec.Bbo), true, nil
		}
	}
}
