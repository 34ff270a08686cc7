// Package okx is the venue protocol codec: two WebSocket sessions (public,
// private), the login handshake, outbound Action-to-envelope encoding, and
// inbound envelope-to-domain-event decoding. Nothing in this package knows
// about strategies; apart from the live Broker's local position tracker
// (a types.Portfolio fed from order-push fills), it only translates
// between the wire and pkg/types.
//
// Grounded on original_source/data_center/src/okx_api.rs (OkxWsStream,
// login, connect_adapted) and okx_api/{actions,pushes,types}.rs for the
// exact wire vocabulary.
package okx

import "okx-trading-core/pkg/types"

const (
	PublicWSURL  = "wss://ws.okx.com:8443/ws/v5/public"
	PrivateWSURL = "wss://ws.okx.com:8443/ws/v5/private"

	// Demo-trading ("simulated") endpoints, selected by config.
	PublicWSURLDemo  = "wss://wspap.okx.com:8443/ws/v5/public"
	PrivateWSURLDemo = "wss://wspap.okx.com:8443/ws/v5/private"
)

// channel names outbound subscribe args and inbound push arg.channel use.
const (
	channelTrades = "trades"
	channelBboTbt = "bbo-tbt"
	channelOrders = "orders"
)

// op values for the outbound envelope.
const (
	opSubscribe   = "subscribe"
	opOrder       = "order"
	opAmendOrder  = "amend-order"
	opCancelOrder = "cancel-order"
	opLogin       = "login"
)

const (
	instTypeSwap = "SWAP"
	tdModeCross  = "cross"
	ordTypeLimit = "limit"
	ordTypeMkt   = "market"
)

func wireSide(s types.Side) string {
	if s == types.Buy {
		return "buy"
	}
	return "sell"
}

func sideFromWire(s string) (types.Side, bool) {
	switch s {
	case "buy":
		return types.Buy, true
	case "sell":
		return types.Sell, true
	default:
		return false, false
	}
}

// execTypeFromWire maps OKX's fillPnlType/execType marker: "T" -> Taker,
// "M" -> Maker, absent -> Taker (the spec's documented default).
func execTypeFromWire(s string) types.ExecType {
	if s == "M" {
		return types.Maker
	}
	return types.Taker
}
