package okx

import (
	"encoding/json"
	"fmt"

	"okx-trading-core/pkg/types"
)

// arg is the inbound push envelope's {channel, instId} header.
type arg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

// pushEnvelope is the inbound {arg:{channel,instId}, event?, data?[]}
// frame shape shared by every channel.
type pushEnvelope struct {
	Event string            `json:"event"`
	Code  string            `json:"code"`
	Msg   string             `json:"msg"`
	Arg   arg               `json:"arg"`
	Data  []json.RawMessage `json:"data"`
}

type tradeData struct {
	InstID  string `json:"instId"`
	TradeID string `json:"tradeId"`
	Px      string `json:"px"`
	Sz      string `json:"sz"`
	Side    string `json:"side"`
	Ts      string `json:"ts"`
	Count   string `json:"count"`
}

type depthData struct {
	Asks [][4]string `json:"asks"`
	Bids [][4]string `json:"bids"`
	Ts   string      `json:"ts"`
}

type ordersData struct {
	ClOrdID      string `json:"clOrdId"`
	State        string `json:"state"`
	Side         string `json:"side"`
	Sz           string `json:"sz"`
	FillSz       string `json:"fillSz"`
	AccFillSz    string `json:"accFillSz"`
	FillPx       string `json:"fillPx"`
	CancelSource string `json:"cancelSource"`
	AmendResult  string `json:"amendResult"`
	ExecType     string `json:"execType"`
}

// PushKind discriminates what DecodePush produced.
type PushKind int

const (
	PushNone PushKind = iota // event frame (subscribe/login/error) — logged and dropped
	PushTrade
	PushBbo
	PushOrder
)

// PushResult is the decoded form of one inbound text frame.
type PushResult struct {
	Kind  PushKind
	Trade types.Trade
	Bbo   types.Bbo
	Order types.BrokerEvent // only set when Kind == PushOrder
}

// DecodePush parses one inbound text frame. Event frames (subscribe,
// login, error) return Kind == PushNone; callers log and drop these.
func DecodePush(frame []byte) (PushResult, error) {
	var env pushEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return PushResult{}, fmt.Errorf("okx: decode push: %w", err)
	}
	if env.Event != "" {
		return PushResult{Kind: PushNone}, nil
	}
	if len(env.Data) == 0 {
		return PushResult{}, fmt.Errorf("okx: push without data: %s", frame)
	}

	switch env.Arg.Channel {
	case channelTrades:
		var d tradeData
		if err := json.Unmarshal(env.Data[0], &d); err != nil {
			return PushResult{}, fmt.Errorf("okx: decode trade: %w", err)
		}
		trade, err := decodeTrade(d)
		if err != nil {
			return PushResult{}, err
		}
		return PushResult{Kind: PushTrade, Trade: trade}, nil

	case channelBboTbt:
		var d depthData
		if err := json.Unmarshal(env.Data[0], &d); err != nil {
			return PushResult{}, fmt.Errorf("okx: decode bbo: %w", err)
		}
		bbo, err := decodeBbo(d, types.InstrumentID(env.Arg.InstID))
		if err != nil {
			return PushResult{}, err
		}
		return PushResult{Kind: PushBbo, Bbo: bbo}, nil

	case channelOrders:
		var d ordersData
		if err := json.Unmarshal(env.Data[0], &d); err != nil {
			return PushResult{}, fmt.Errorf("okx: decode order: %w", err)
		}
		event, err := decodeOrderPush(d, types.InstrumentID(env.Arg.InstID))
		if err != nil {
			return PushResult{}, err
		}
		return PushResult{Kind: PushOrder, Order: event}, nil

	default:
		return PushResult{}, fmt.Errorf("okx: unknown channel %q", env.Arg.Channel)
	}
}

func decodeTrade(d tradeData) (types.Trade, error) {
	var t types.Trade
	ts, err := parseUintStr(d.Ts)
	if err != nil {
		return t, fmt.Errorf("okx: trade ts: %w", err)
	}
	price, err := parseFloatStr(d.Px)
	if err != nil {
		return t, fmt.Errorf("okx: trade px: %w", err)
	}
	size, err := parseFloatStr(d.Sz)
	if err != nil {
		return t, fmt.Errorf("okx: trade sz: %w", err)
	}
	side, ok := sideFromWire(d.Side)
	if !ok {
		return t, fmt.Errorf("okx: invalid trade side %q", d.Side)
	}
	count, err := parseInt32Str(d.Count)
	if err != nil {
		return t, fmt.Errorf("okx: trade count: %w", err)
	}
	return types.Trade{
		Ts:           ts,
		InstrumentID: types.InstrumentID(d.InstID),
		TradeID:      d.TradeID,
		Price:        price,
		Size:         size,
		Side:         side,
		OrderCount:   count,
	}, nil
}

func decodeBbo(d depthData, inst types.InstrumentID) (types.Bbo, error) {
	var b types.Bbo
	if len(d.Bids) == 0 || len(d.Asks) == 0 {
		return b, fmt.Errorf("okx: bbo push with empty side")
	}
	ts, err := parseUintStr(d.Ts)
	if err != nil {
		return b, fmt.Errorf("okx: bbo ts: %w", err)
	}
	bidPrice, err := parseFloatStr(d.Bids[0][0])
	if err != nil {
		return b, fmt.Errorf("okx: bbo bid price: %w", err)
	}
	bidSize, err := parseFloatStr(d.Bids[0][1])
	if err != nil {
		return b, fmt.Errorf("okx: bbo bid size: %w", err)
	}
	askPrice, err := parseFloatStr(d.Asks[0][0])
	if err != nil {
		return b, fmt.Errorf("okx: bbo ask price: %w", err)
	}
	askSize, err := parseFloatStr(d.Asks[0][1])
	if err != nil {
		return b, fmt.Errorf("okx: bbo ask size: %w", err)
	}
	return types.Bbo{
		Ts:           ts,
		InstrumentID: inst,
		BidPrice:     bidPrice,
		BidSize:      bidSize,
		AskPrice:     askPrice,
		AskSize:      askSize,
	}, nil
}

// decodeOrderPush derives the BrokerEvent the spec's push_type priority
// rule selects: filled_size>0 -> Fill; else cancel_source non-empty ->
// Canceled; else amend_result non-empty -> Amended; else Placed.
func decodeOrderPush(d ordersData, inst types.InstrumentID) (types.BrokerEvent, error) {
	orderID, err := parseClOrdID(d.ClOrdID)
	if err != nil {
		return types.BrokerEvent{}, err
	}

	switch {
	case mustFloat(d.FillSz) > 0:
		price, err := parseFloatStr(d.FillPx)
		if err != nil {
			return types.BrokerEvent{}, fmt.Errorf("okx: fill px: %w", err)
		}
		filledSize, err := parseFloatStr(d.FillSz)
		if err != nil {
			return types.BrokerEvent{}, fmt.Errorf("okx: fill sz: %w", err)
		}
		accFilledSize, err := parseFloatStr(d.AccFillSz)
		if err != nil {
			return types.BrokerEvent{}, fmt.Errorf("okx: acc fill sz: %w", err)
		}
		side, ok := sideFromWire(d.Side)
		if !ok {
			return types.BrokerEvent{}, fmt.Errorf("okx: invalid order side %q", d.Side)
		}
		return types.FillEvent(types.Fill{
			OrderID:       orderID,
			InstrumentID:  inst,
			FilledSize:    filledSize,
			AccFilledSize: accFilledSize,
			Price:         price,
			Side:          side,
			ExecType:      execTypeFromWire(d.ExecType),
			State:         fillStateFromWire(d.State),
		}), nil

	case d.CancelSource != "":
		return types.CanceledEvent(orderID), nil

	case d.AmendResult != "":
		order, err := decodeWorkingOrder(d, orderID, inst)
		if err != nil {
			return types.BrokerEvent{}, err
		}
		return types.AmendedEvent(order), nil

	default:
		order, err := decodeWorkingOrder(d, orderID, inst)
		if err != nil {
			return types.BrokerEvent{}, err
		}
		return types.PlacedEvent(order), nil
	}
}

func decodeWorkingOrder(d ordersData, orderID types.OrderID, inst types.InstrumentID) (types.LimitOrder, error) {
	size, err := parseFloatStr(d.Sz)
	if err != nil {
		return types.LimitOrder{}, fmt.Errorf("okx: order sz: %w", err)
	}
	accFilledSize, err := parseFloatStr(d.AccFillSz)
	if err != nil {
		return types.LimitOrder{}, fmt.Errorf("okx: acc fill sz: %w", err)
	}
	side, ok := sideFromWire(d.Side)
	if !ok {
		return types.LimitOrder{}, fmt.Errorf("okx: invalid order side %q", d.Side)
	}
	return types.LimitOrder{
		OrderID:      orderID,
		InstrumentID: inst,
		Size:         size,
		FilledSize:   accFilledSize,
		Side:         side,
	}, nil
}

func fillStateFromWire(s string) types.FillState {
	switch s {
	case "filled":
		return types.Filled
	case "partially-filled", "partially_filled":
		return types.Partially
	default:
		return types.Live
	}
}

func mustFloat(s string) float64 {
	v, err := parseFloatStr(s)
	if err != nil {
		return 0
	}
	return v
}
