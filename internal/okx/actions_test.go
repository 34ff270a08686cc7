package okx

import (
	"encoding/json"
	"testing"

	"okx-trading-core/pkg/types"
)

const testInst types.InstrumentID = "BTC-USDT-SWAP"

func TestEncodeSubscribeTrades(t *testing.T) {
	t.Parallel()
	frame, err := EncodeSubscribeTrades(testInst)
	if err != nil {
		t.Fatalf("EncodeSubscribeTrades: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(frame), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["op"] != "subscribe" {
		t.Errorf("op = %v, want subscribe", got["op"])
	}
	args := got["args"].([]any)[0].(map[string]any)
	if args["channel"] != "trades" || args["instId"] != string(testInst) {
		t.Errorf("args = %+v", args)
	}
	if _, present := args["instType"]; present {
		t.Error("trades subscribe should not carry instType")
	}
}

func TestEncodeSubscribeOrdersIncludesInstType(t *testing.T) {
	t.Parallel()
	frame, err := EncodeSubscribeOrders(testInst)
	if err != nil {
		t.Fatalf("EncodeSubscribeOrders: %v", err)
	}
	var got map[string]any
	json.Unmarshal([]byte(frame), &got)
	args := got["args"].([]any)[0].(map[string]any)
	if args["instType"] != "SWAP" {
		t.Errorf("instType = %v, want SWAP", args["instType"])
	}
}

func TestEncodeClientEventLimitOrder(t *testing.T) {
	t.Parallel()
	order := types.LimitOrder{OrderID: 42, InstrumentID: testInst, Price: 50000.5, Size: 1.25, Side: types.Buy}
	frame, err := EncodeClientEvent(types.PlaceLimit(order), 1, 2)
	if err != nil {
		t.Fatalf("EncodeClientEvent: %v", err)
	}
	var got map[string]any
	json.Unmarshal([]byte(frame), &got)
	if got["op"] != "order" {
		t.Errorf("op = %v, want order", got["op"])
	}
	if got["id"] != "42" {
		t.Errorf("id = %v, want \"42\"", got["id"])
	}
	args := got["args"].([]any)[0].(map[string]any)
	if args["side"] != "buy" || args["px"] != "50000.5" || args["sz"] != "1.25" || args["tdMode"] != "cross" || args["ordType"] != "limit" {
		t.Errorf("args = %+v", args)
	}
}

func TestEncodeClientEventMarketOrderHasNoPrice(t *testing.T) {
	t.Parallel()
	order := types.MarketOrder{OrderID: 7, InstrumentID: testInst, Size: 0.5, Side: types.Sell}
	frame, err := EncodeClientEvent(types.PlaceMarket(order), 1, 2)
	if err != nil {
		t.Fatalf("EncodeClientEvent: %v", err)
	}
	var got map[string]any
	json.Unmarshal([]byte(frame), &got)
	args := got["args"].([]any)[0].(map[string]any)
	if _, present := args["px"]; present {
		t.Error("market order should not carry a px field")
	}
	if args["ordType"] != "market" || args["sz"] != "0.50" {
		t.Errorf("args = %+v", args)
	}
}

func TestEncodeClientEventAmendAndCancelRoundTripOrderID(t *testing.T) {
	t.Parallel()
	amendFrame, err := EncodeClientEvent(types.AmendEvent(types.AmendOrder{OrderID: 9, InstrumentID: testInst, NewPrice: 1, NewSize: 2}), 0, 0)
	if err != nil {
		t.Fatalf("EncodeClientEvent amend: %v", err)
	}
	var amendGot map[string]any
	json.Unmarshal([]byte(amendFrame), &amendGot)
	if amendGot["op"] != "amend-order" || amendGot["id"] != "9" {
		t.Errorf("amend envelope = %+v", amendGot)
	}

	cancelFrame, err := EncodeClientEvent(types.CancelEvent(testInst, 9), 0, 0)
	if err != nil {
		t.Fatalf("EncodeClientEvent cancel: %v", err)
	}
	var cancelGot map[string]any
	json.Unmarshal([]byte(cancelFrame), &cancelGot)
	if cancelGot["op"] != "cancel-order" || cancelGot["id"] != "9" {
		t.Errorf("cancel envelope = %+v", cancelGot)
	}
}

func TestIsPrivateRoutesOrderOpsOnly(t *testing.T) {
	t.Parallel()
	if !IsPrivate(types.PlaceLimit(types.LimitOrder{})) {
		t.Error("limit order placement should be private")
	}
	if !IsPrivate(types.PlaceMarket(types.MarketOrder{})) {
		t.Error("market order placement should be private")
	}
	if !IsPrivate(types.AmendEvent(types.AmendOrder{})) {
		t.Error("amend should be private")
	}
	if !IsPrivate(types.CancelEvent(testInst, 1)) {
		t.Error("cancel should be private")
	}
}

func TestClOrdIDRoundTrip(t *testing.T) {
	t.Parallel()
	id := types.NewOrderID(123456, 7)
	parsed, err := parseClOrdID(clOrdID(id))
	if err != nil {
		t.Fatalf("parseClOrdID: %v", err)
	}
	if parsed != id {
		t.Errorf("round-tripped id = %v, want %v", parsed, id)
	}
}
