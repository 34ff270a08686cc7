package api

import "time"

// Snapshot is the complete read-only state of a running engine, as served
// by GET /api/snapshot and pushed over the WebSocket feed.
type Snapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Positions []PositionSnapshot `json:"positions"`
}

// PositionSnapshot reports the broker's tracked position for one
// instrument.
type PositionSnapshot struct {
	InstrumentID string  `json:"instrument_id"`
	Size         float64 `json:"size"`
}
