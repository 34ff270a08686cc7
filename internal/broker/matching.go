package broker

import "okx-trading-core/pkg/types"

// crossed reports whether a limit order's price has reached the touch
// price it needs to execute against: a buy crosses when its price is at
// or above the ask, a sell when its price is at or below the bid.
func crossed(order types.LimitOrder, bbo types.Bbo) bool {
	if order.Side == types.Buy {
		return order.Price >= bbo.AskPrice
	}
	return order.Price <= bbo.BidPrice
}

// touchPrice is the price a taker fill clears at: the side it crosses,
// not the order's own limit price.
func touchPrice(side types.Side, bbo types.Bbo) float64 {
	if side == types.Buy {
		return bbo.AskPrice
	}
	return bbo.BidPrice
}

// tryFillLimitOrder matches a working limit order against the current
// BBO. Taker fills (checked at placement time) clear at the touched
// side's price; maker fills (checked on each later data step) clear at
// the order's own limit price, on the assumption the order sat at the
// end of its price queue. The sandbox always fills the full remaining
// size — no partial fills.
func tryFillLimitOrder(order types.LimitOrder, bbo types.Bbo, execType types.ExecType) (types.Fill, bool) {
	if !crossed(order, bbo) {
		return types.Fill{}, false
	}
	price := order.Price
	if execType == types.Taker {
		price = touchPrice(order.Side, bbo)
	}
	return types.Fill{
		OrderID:       order.OrderID,
		InstrumentID:  order.InstrumentID,
		FilledSize:    order.Working(),
		AccFilledSize: order.Size,
		Price:         price,
		Side:          order.Side,
		ExecType:      execType,
		State:         types.Filled,
	}, true
}

// fillMarketOrder fills a market order immediately at the opposite side's
// touch price, for its full size.
func fillMarketOrder(order types.MarketOrder, bbo types.Bbo) types.Fill {
	return types.Fill{
		OrderID:       order.OrderID,
		InstrumentID:  order.InstrumentID,
		FilledSize:    order.Size,
		AccFilledSize: order.Size,
		Price:         touchPrice(order.Side, bbo),
		Side:          order.Side,
		ExecType:      types.Taker,
		State:         types.Filled,
	}
}
