package strategy

import (
	"math"

	"okx-trading-core/pkg/types"
)

// OfiMomentum signals mean-reversion against order-flow imbalance: it
// maintains a dual-EMA of the OFI contribution of each new BBO and emits a
// signal once the current EMA's z-score against its own running mean and
// variance crosses a threshold.
//
// Sign convention: a strong positive OFI z-score predicts mean reversion,
// so positive z emits Short and negative z emits Long. This is the latest
// of two conflicting source revisions. The sign is fixed: NewOfiMomentum
// has no parameter to reverse it.
//
// Grounded on strategy/single_ticker/ofi_momentum.rs.
type OfiMomentum struct {
	windowOfi float64 // tau_ofi, milliseconds
	windowEma float64 // tau_ema, milliseconds
	theta     float64
	warmUp    float64 // milliseconds

	firstTs Timestamp
	haveFirst bool

	bbo   types.Bbo
	haveBbo bool

	ofi    *Ema
	emaOfi *Emav
}

// Timestamp is a package-local alias for types.Timestamp.
type Timestamp = types.Timestamp

// NewOfiMomentum builds a signaler with the given EMA time constants
// (milliseconds) and entry threshold theta.
func NewOfiMomentum(windowOfiMs, windowEmaMs uint64, theta float64) *OfiMomentum {
	warmUp := windowOfiMs
	if windowEmaMs > warmUp {
		warmUp = windowEmaMs
	}
	return &OfiMomentum{
		windowOfi: float64(windowOfiMs),
		windowEma: float64(windowEmaMs),
		theta:     theta,
		warmUp:    float64(warmUp),
		ofi:       NewEma(float64(windowOfiMs)),
		emaOfi:    NewEmav(float64(windowEmaMs)),
	}
}

func (m *OfiMomentum) OnData(data types.Level1) *Signal {
	bbo := data.Bbo
	if !m.haveFirst {
		m.firstTs = bbo.Ts
		m.haveFirst = true
	}
	if !m.haveBbo {
		m.bbo = bbo
		m.haveBbo = true
		return nil
	}

	old := m.bbo
	var ofiSegment float64
	if bbo.BidPrice >= old.BidPrice {
		ofiSegment += bbo.BidSize
	}
	if bbo.BidPrice <= old.BidPrice {
		ofiSegment -= old.BidSize
	}
	if bbo.AskPrice <= old.AskPrice {
		ofiSegment -= bbo.AskSize
	}
	if bbo.AskPrice >= old.AskPrice {
		ofiSegment += old.AskSize
	}

	dt := float64(bbo.Ts - old.Ts)
	m.ofi.Update(ofiSegment, dt)
	ofi, _ := m.ofi.Mean()
	m.emaOfi.Update(ofi, dt)
	m.bbo = bbo

	elapsed := float64(bbo.Ts - m.firstTs)
	if elapsed <= m.warmUp {
		return nil
	}

	mean, ok := m.emaOfi.Mean()
	if !ok {
		return nil
	}
	variance, _ := m.emaOfi.Variance()
	z := (ofi - mean) / math.Sqrt(variance)

	switch {
	case z > m.theta:
		s := Short
		return &s
	case z < -m.theta:
		s := Long
		return &s
	default:
		return nil
	}
}
