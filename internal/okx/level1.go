package okx

import "okx-trading-core/pkg/types"

// Level1Accumulator derives types.Level1 from a merged trade+bbo feed: it
// folds trade prints into a volume-weighted last price and buy/sell volume
// tally, and emits one Level1 snapshot every time a Bbo arrives, resetting
// all four accumulators at that boundary.
//
// Grounded on original_source/data_center/src/types.rs's Level1Stream,
// generalized to reset buying_volume/selling_volume on every Bbo boundary
// too (the Rust source only resets weighted_price/volume there, leaving
// the two trade-side tallies to grow without bound across ticks — see
// DESIGN.md for why this accumulator corrects that instead of reproducing
// it).
type Level1Accumulator struct {
	weightedPrice float64
	volume        float64
	buyVolume     float64
	sellVolume    float64
}

// NewLevel1Accumulator returns a zeroed accumulator.
func NewLevel1Accumulator() *Level1Accumulator {
	return &Level1Accumulator{}
}

// PushTrade folds one trade print into the running weighted price and
// side volumes. OrderCount multiplies Size the way the original computes
// the trade's notional contribution (one wire trade print can represent
// several aggregated executions).
func (a *Level1Accumulator) PushTrade(t types.Trade) {
	size := t.Size * float64(t.OrderCount)
	if a.volume+size > 0 {
		a.weightedPrice = (a.weightedPrice*a.volume + t.Price*size) / (a.volume + size)
	}
	a.volume += size
	if t.Side == types.Buy {
		a.buyVolume += t.Size
	} else {
		a.sellVolume += t.Size
	}
}

// PushBbo folds a Bbo boundary: it snapshots the current accumulators into
// a Level1, then resets all of them for the next window.
func (a *Level1Accumulator) PushBbo(bbo types.Bbo) types.Level1 {
	level1 := types.Level1{
		Bbo:       bbo,
		LastPrice: a.weightedPrice,
		Volume:    a.volume,
		BuyVolume: a.buyVolume,
		SellVolume: a.sellVolume,
	}
	a.weightedPrice = 0
	a.volume = 0
	a.buyVolume = 0
	a.sellVolume = 0
	return level1
}
