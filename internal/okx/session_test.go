package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"okx-trading-core/internal/stream"
)

// echoServer accepts one WebSocket connection and echoes every text frame
// it receives back to the client, used to exercise wsDuplex end to end
// without a real OKX endpoint.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if conn.WriteMessage(websocket.TextMessage, msg) != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWsDuplexSendAndReceive(t *testing.T) {
	t.Parallel()
	srv := echoServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	d, err := dialWsDuplex(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("dialWsDuplex: %v", err)
	}
	defer d.Close()

	if err := d.Send(context.Background(), stream.Frame("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case frame, ok := <-d.Frames():
		if !ok {
			t.Fatal("Frames() closed unexpectedly")
		}
		if frame != "hello" {
			t.Errorf("frame = %q, want %q", frame, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed frame")
	}
}

func TestWsDuplexFramesClosesOnServerDisconnect(t *testing.T) {
	t.Parallel()
	srv := echoServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	d, err := dialWsDuplex(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("dialWsDuplex: %v", err)
	}
	srv.Close()

	select {
	case _, ok := <-d.Frames():
		if ok {
			t.Fatal("expected Frames() to close after server shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Frames() to close")
	}
}
