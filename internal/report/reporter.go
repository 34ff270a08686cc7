// Package report implements the equity-curve aggregator and Sharpe-ratio
// computation that a backtest run produces. It is the scientific
// deliverable of a simulation: a time-binned series of portfolio value.
package report

import (
	"math"
)

// Record is one sample of the equity curve.
type Record struct {
	Ts    uint64
	Value float64
}

// Reporter bins portfolio value samples into fixed-width time windows,
// holding the last observed value forward across any bin in which no
// event occurred.
type Reporter struct {
	frequency uint64 // bin width in milliseconds

	history []Record

	started  bool
	boundary uint64 // the ts marking the start of the current bin
	buffered float64
	ended    bool
}

// NewReporter creates a reporter binning to the given frequency in
// milliseconds.
func NewReporter(frequencyMs uint64) *Reporter {
	return &Reporter{frequency: frequencyMs}
}

// Insert records a value observed at ts. The first call seeds the bin
// boundary to floor(ts/f)*f with no output. Every subsequent call that
// crosses one or more bin boundaries emits one Record per skipped
// boundary carrying the previously buffered value (hold-last-value),
// before buffering the new value.
func (r *Reporter) Insert(ts uint64, value float64) {
	if !r.started {
		r.boundary = (ts / r.frequency) * r.frequency
		r.buffered = value
		r.started = true
		return
	}

	for ts > r.boundary+r.frequency {
		r.boundary += r.frequency
		r.history = append(r.history, Record{Ts: r.boundary, Value: r.buffered})
	}
	r.buffered = value
}

// End emits the final buffered value at boundary+frequency exactly once;
// subsequent calls are no-ops.
func (r *Reporter) End() {
	if !r.started || r.ended {
		return
	}
	r.history = append(r.history, Record{Ts: r.boundary + r.frequency, Value: r.buffered})
	r.ended = true
}

// History returns the recorded equity curve in ascending ts order.
func (r *Reporter) History() []Record {
	out := make([]Record, len(r.history))
	copy(out, r.history)
	return out
}

// Sharpe computes mean(simple returns) / stdev(simple returns) over
// adjacent records, with no annualization. Pairs whose earlier value is 0
// are skipped. Returns NaN when fewer than two returns can be computed
// (so always for fewer than three records) or when their standard
// deviation is 0.
func Sharpe(history []Record) float64 {
	if len(history) < 2 {
		return math.NaN()
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (history[i].Value-prev)/prev)
	}
	if len(returns) < 2 {
		return math.NaN()
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sqDiff float64
	for _, r := range returns {
		d := r - mean
		sqDiff += d * d
	}
	stdev := math.Sqrt(sqDiff / float64(len(returns)-1))
	if stdev == 0 {
		return math.NaN()
	}
	return mean / stdev
}
