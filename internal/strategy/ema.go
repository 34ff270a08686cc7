package strategy

import "math"

// Ema is a time-constant exponential moving average. Unlike a fixed-alpha
// EMA, the smoothing factor is recomputed on every update from the elapsed
// time since the previous observation, so it tolerates irregularly spaced
// ticks: alpha = 1 - exp(-dt/tau).
//
// No corpus library offers this dt-weighted variant (shopspring/decimal
// would only help with string-precision, not the formula itself), so it is
// hand-rolled against the spec's own contract — see DESIGN.md.
type Ema struct {
	tau    float64
	value  float64
	warmed bool
}

// NewEma creates an EMA with the given time constant in milliseconds.
func NewEma(tau float64) *Ema {
	return &Ema{tau: tau}
}

// Update folds in a new observation taken dt milliseconds after the last
// one. The first call seeds the average with x unconditionally.
func (e *Ema) Update(x, dt float64) {
	if !e.warmed {
		e.value = x
		e.warmed = true
		return
	}
	alpha := 1 - math.Exp(-dt/e.tau)
	e.value += alpha * (x - e.value)
}

// Mean returns the current average, or (0, false) before the first update.
func (e *Ema) Mean() (float64, bool) {
	if !e.warmed {
		return 0, false
	}
	return e.value, true
}

// Emav is an EMA of an EMA: it tracks both the running mean and the running
// mean-of-squares of its input, yielding an exponentially-weighted running
// variance (mean-of-squares minus mean-squared) alongside the mean itself.
type Emav struct {
	mean   *Ema
	meanSq *Ema
}

// NewEmav creates an Emav with the given time constant in milliseconds.
func NewEmav(tau float64) *Emav {
	return &Emav{mean: NewEma(tau), meanSq: NewEma(tau)}
}

// Update folds in a new observation taken dt milliseconds after the last.
func (e *Emav) Update(x, dt float64) {
	e.mean.Update(x, dt)
	e.meanSq.Update(x*x, dt)
}

// Mean returns the running mean, or (0, false) before the first update.
func (e *Emav) Mean() (float64, bool) {
	return e.mean.Mean()
}

// Variance returns the running variance (never negative, clamped at 0 to
// absorb floating-point error), or (0, false) before the first update.
func (e *Emav) Variance() (float64, bool) {
	mean, ok := e.mean.Mean()
	if !ok {
		return 0, false
	}
	meanSq, _ := e.meanSq.Mean()
	v := meanSq - mean*mean
	if v < 0 {
		v = 0
	}
	return v, true
}
