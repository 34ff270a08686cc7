package api

import (
	"time"

	"okx-trading-core/pkg/types"
)

// Provider is the read-only surface a running engine exposes to the
// monitor. Both internal/broker.SandboxBroker and internal/okx.Broker
// satisfy it (they already expose Position per the spec's "Portfolio...
// owned exclusively by the broker"), so the same monitor serves a backtest
// or a live run without modification.
type Provider interface {
	Position(id types.InstrumentID) types.Position
}

// BuildSnapshot reads the current position for every configured instrument
// off the provider. Reads here race with the engine's own goroutine
// updating positions on fills; that race is intentional and benign — the
// monitor is read-only and eventually consistent, never the other way
// around (see internal/broker's engine for why there's no lock to take).
func BuildSnapshot(provider Provider, instruments []types.InstrumentID) Snapshot {
	positions := make([]PositionSnapshot, 0, len(instruments))
	for _, inst := range instruments {
		positions = append(positions, PositionSnapshot{
			InstrumentID: string(inst),
			Size:         provider.Position(inst).Size,
		})
	}
	return Snapshot{
		Timestamp: time.Now(),
		Positions: positions,
	}
}
