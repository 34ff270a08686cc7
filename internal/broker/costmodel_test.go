package broker

import (
	"math"
	"testing"

	"okx-trading-core/pkg/types"
)

const testInstrument types.InstrumentID = "BTC-USDT-SWAP"

func TestTransactionCostModelTakerBuyAppliesSlippageAndFee(t *testing.T) {
	t.Parallel()
	m := TransactionCostModel{MakerFee: 0.0002, TakerFee: 0.0005, Slippage: 0.001}

	got := m.Cost(50001, 1.0, types.Buy, types.Taker)
	effective := 50001 * 1.001
	want := effective*1.0*(1+0.0005) - 50001*1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
}

func TestTransactionCostModelTakerSellAppliesSlippageOppositeDirection(t *testing.T) {
	t.Parallel()
	m := TransactionCostModel{Slippage: 0.001}

	got := m.Cost(50000, 2.0, types.Sell, types.Taker)
	effective := 50000 * (1 - 0.001)
	want := effective*2.0*(1+0) - 50000*2.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
}

func TestTransactionCostModelMakerFillsIgnoreSlippage(t *testing.T) {
	t.Parallel()
	m := TransactionCostModel{MakerFee: 0.0001, TakerFee: 0.0005, Slippage: 0.01}

	got := m.Cost(49999, 1.0, types.Buy, types.Maker)
	want := 49999*1.0*(1+0.0001) - 49999*1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost() = %v, want %v (no slippage for makers)", got, want)
	}
}

func TestZeroCostModelIsFreeOfCharge(t *testing.T) {
	t.Parallel()
	m := TransactionCostModel{}
	if got := m.Cost(50000, 1.0, types.Buy, types.Taker); got != 0 {
		t.Errorf("Cost() = %v, want 0", got)
	}
}
