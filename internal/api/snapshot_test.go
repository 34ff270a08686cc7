package api

import (
	"testing"

	"okx-trading-core/pkg/types"
)

type fakeProvider struct {
	positions map[types.InstrumentID]types.Position
}

func (f fakeProvider) Position(id types.InstrumentID) types.Position {
	return f.positions[id]
}

func TestBuildSnapshotReadsEveryConfiguredInstrument(t *testing.T) {
	t.Parallel()
	provider := fakeProvider{positions: map[types.InstrumentID]types.Position{
		"BTC-USDT-SWAP": {Size: 1.5},
	}}
	instruments := []types.InstrumentID{"BTC-USDT-SWAP", "ETH-USDT-SWAP"}

	snap := BuildSnapshot(provider, instruments)

	if len(snap.Positions) != 2 {
		t.Fatalf("len(Positions) = %d, want 2", len(snap.Positions))
	}
	if snap.Positions[0].InstrumentID != "BTC-USDT-SWAP" || snap.Positions[0].Size != 1.5 {
		t.Errorf("positions[0] = %+v", snap.Positions[0])
	}
	if snap.Positions[1].InstrumentID != "ETH-USDT-SWAP" || snap.Positions[1].Size != 0 {
		t.Errorf("positions[1] = %+v", snap.Positions[1])
	}
}
