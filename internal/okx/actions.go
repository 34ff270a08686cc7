package okx

import (
	"encoding/json"
	"fmt"
	"strconv"

	"okx-trading-core/internal/stream"
	"okx-trading-core/pkg/types"
)

// subscribeArg is the outbound {channel, instType?, instId} subscribe
// argument. instType is only present for the orders channel.
type subscribeArg struct {
	Channel  string `json:"channel"`
	InstType string `json:"instType,omitempty"`
	InstID   string `json:"instId"`
}

type limitOrderArg struct {
	Side     string `json:"side"`
	InstID   string `json:"instId"`
	ClOrdID  string `json:"clOrdId"`
	TdMode   string `json:"tdMode"`
	OrdType  string `json:"ordType"`
	Sz       string `json:"sz"`
	Px       string `json:"px"`
}

type marketOrderArg struct {
	Side    string `json:"side"`
	InstID  string `json:"instId"`
	ClOrdID string `json:"clOrdId"`
	TdMode  string `json:"tdMode"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
}

type amendOrderArg struct {
	InstID  string `json:"instId"`
	ClOrdID string `json:"clOrdId"`
	NewSz   string `json:"newSz"`
	NewPx   string `json:"newPx"`
}

type cancelOrderArg struct {
	InstID  string `json:"instId"`
	ClOrdID string `json:"clOrdId"`
}

// envelope is the outbound {id?, op, args:[arg]} request frame, generic
// over the single argument's shape.
type envelope struct {
	ID   string `json:"id,omitempty"`
	Op   string `json:"op"`
	Args [1]any `json:"args"`
}

// clOrdID formats a types.OrderID as the decimal client-order-id string
// OKX carries in cl_ord_id; parseClOrdID inverts it for inbound pushes.
func clOrdID(id types.OrderID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseClOrdID(s string) (types.OrderID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("okx: invalid clOrdId %q: %w", s, err)
	}
	return types.OrderID(v), nil
}

// formatDecimal renders a price/size at the instrument's configured
// precision, matching OKX's string-encoded numeric fields.
func formatDecimal(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// EncodeSubscribeTrades builds the outbound subscribe-trades action.
func EncodeSubscribeTrades(inst types.InstrumentID) (stream.Frame, error) {
	return encodeEnvelope(envelope{Op: opSubscribe, Args: [1]any{subscribeArg{Channel: channelTrades, InstID: string(inst)}}})
}

// EncodeSubscribeBboTbt builds the outbound subscribe-bbo-tbt action.
func EncodeSubscribeBboTbt(inst types.InstrumentID) (stream.Frame, error) {
	return encodeEnvelope(envelope{Op: opSubscribe, Args: [1]any{subscribeArg{Channel: channelBboTbt, InstID: string(inst)}}})
}

// EncodeSubscribeOrders builds the outbound subscribe-orders action (private).
func EncodeSubscribeOrders(inst types.InstrumentID) (stream.Frame, error) {
	return encodeEnvelope(envelope{Op: opSubscribe, Args: [1]any{subscribeArg{Channel: channelOrders, InstType: instTypeSwap, InstID: string(inst)}}})
}

// EncodeClientEvent translates one internal ClientEvent into the outbound
// order/amend/cancel envelope it corresponds to on the wire.
func EncodeClientEvent(ev types.ClientEvent, priceDigits, sizeDigits int) (stream.Frame, error) {
	switch ev.Kind {
	case types.ClientPlaceMarket:
		o := ev.Market
		return encodeEnvelope(envelope{
			ID: clOrdID(o.OrderID),
			Op: opOrder,
			Args: [1]any{marketOrderArg{
				Side:    wireSide(o.Side),
				InstID:  string(o.InstrumentID),
				ClOrdID: clOrdID(o.OrderID),
				TdMode:  tdModeCross,
				OrdType: ordTypeMkt,
				Sz:      formatDecimal(o.Size, sizeDigits),
			}},
		})

	case types.ClientPlaceLimit:
		o := ev.Limit
		return encodeEnvelope(envelope{
			ID: clOrdID(o.OrderID),
			Op: opOrder,
			Args: [1]any{limitOrderArg{
				Side:    wireSide(o.Side),
				InstID:  string(o.InstrumentID),
				ClOrdID: clOrdID(o.OrderID),
				TdMode:  tdModeCross,
				OrdType: ordTypeLimit,
				Sz:      formatDecimal(o.Size, sizeDigits),
				Px:      formatDecimal(o.Price, priceDigits),
			}},
		})

	case types.ClientAmend:
		a := ev.Amend
		return encodeEnvelope(envelope{
			ID: clOrdID(a.OrderID),
			Op: opAmendOrder,
			Args: [1]any{amendOrderArg{
				InstID:  string(a.InstrumentID),
				ClOrdID: clOrdID(a.OrderID),
				NewSz:   formatDecimal(a.NewSize, sizeDigits),
				NewPx:   formatDecimal(a.NewPrice, priceDigits),
			}},
		})

	case types.ClientCancel:
		return encodeEnvelope(envelope{
			ID: clOrdID(ev.CancelID),
			Op: opCancelOrder,
			Args: [1]any{cancelOrderArg{
				InstID:  string(ev.InstrumentID),
				ClOrdID: clOrdID(ev.CancelID),
			}},
		})

	default:
		return "", fmt.Errorf("okx: unknown client event kind %v", ev.Kind)
	}
}

// IsPrivate reports whether a ClientEvent must be routed to the private
// session (all order operations) as opposed to the public one.
func IsPrivate(ev types.ClientEvent) bool {
	switch ev.Kind {
	case types.ClientPlaceMarket, types.ClientPlaceLimit, types.ClientAmend, types.ClientCancel:
		return true
	default:
		return false
	}
}

func encodeEnvelope(e envelope) (stream.Frame, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("okx: encode envelope: %w", err)
	}
	return stream.Frame(b), nil
}
