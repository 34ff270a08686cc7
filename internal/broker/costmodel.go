package broker

import "okx-trading-core/pkg/types"

// TransactionCostModel prices the friction of one fill: a maker/taker fee
// rate plus a taker-only slippage adjustment to the touched price.
//
// Grounded on spec.md's literal TransactionCostModel contract; bin/backtest.rs
// constructs one via a `new_okx` helper with a zero-slippage default, which
// NewOkxCostModel mirrors.
type TransactionCostModel struct {
	MakerFee float64
	TakerFee float64
	Slippage float64
}

// NewOkxCostModel builds the OKX-default cost model: a zero-maker-fee,
// zero-taker-fee model carrying only the given slippage. Real fee
// schedules are supplied by the caller via the struct literal directly;
// this constructor only exists to mirror bin/backtest.rs's
// `TransactionCostModel::new_okx(slippage)` convenience call.
func NewOkxCostModel(slippage float64) TransactionCostModel {
	return TransactionCostModel{Slippage: slippage}
}

// Cost returns the transaction cost (to be deducted from cash) of one
// fill at the given price and size.
func (m TransactionCostModel) Cost(price, filledSize float64, side types.Side, execType types.ExecType) float64 {
	effectivePrice := price
	if execType == types.Taker {
		if side == types.Buy {
			effectivePrice = price * (1 + m.Slippage)
		} else {
			effectivePrice = price * (1 - m.Slippage)
		}
	}

	feeRate := m.MakerFee
	if execType == types.Taker {
		feeRate = m.TakerFee
	}

	return effectivePrice*filledSize*(1+feeRate) - price*filledSize
}
