package api

import "time"

// Event wraps every message pushed to a WebSocket client. Type is
// currently always "snapshot" — the monitor only ever pushes the periodic
// full snapshot, unlike the teacher's dashboard which also pushed
// per-fill/per-quote deltas from a multi-market engine.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      Snapshot  `json:"data"`
}

func newSnapshotEvent(snap Snapshot) Event {
	return Event{Type: "snapshot", Timestamp: snap.Timestamp, Data: snap}
}
