package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"okx-trading-core/internal/stream"
)

// Credentials are the OKX API key triplet used to sign the private
// session's login frame.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
}

// buildSign computes the login signature the way the teacher's
// internal/exchange/auth.go buildHMAC builds its L2 HMAC — crypto/hmac +
// crypto/sha256, base64-encoded — applied to OKX's fixed login payload.
func buildSign(secret string, timestamp int64) string {
	payload := fmt.Sprintf("%dGET/users/self/verify", timestamp)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type loginArg struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Sign       string `json:"sign"`
	Timestamp  string `json:"timestamp"`
}

type loginEnvelope struct {
	Op   string      `json:"op"`
	Args [1]loginArg `json:"args"`
}

type eventAck struct {
	Event string `json:"event"`
	Code  string `json:"code"`
	Msg   string `json:"msg"`
}

// Login sends the private session's login frame and blocks until the
// server's first response, rejecting the connection if it is not a
// login-ack. Must run before any private-channel subscribe.
func Login(ctx context.Context, conn stream.Duplex, creds Credentials) error {
	ts := time.Now().Unix()
	msg := loginEnvelope{
		Op: opLogin,
		Args: [1]loginArg{{
			APIKey:     creds.APIKey,
			Passphrase: creds.Passphrase,
			Sign:       buildSign(creds.SecretKey, ts),
			Timestamp:  strconv.FormatInt(ts, 10),
		}},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("okx: encode login: %w", err)
	}
	if err := conn.Send(ctx, stream.Frame(b)); err != nil {
		return fmt.Errorf("okx: send login: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case frame, ok := <-conn.Frames():
		if !ok {
			return fmt.Errorf("okx: connection closed before login ack")
		}
		var ack eventAck
		if err := json.Unmarshal([]byte(frame), &ack); err != nil {
			return fmt.Errorf("okx: malformed login response: %w", err)
		}
		if ack.Event != "login" {
			return fmt.Errorf("okx: login rejected: event=%q code=%q msg=%q", ack.Event, ack.Code, ack.Msg)
		}
		return nil
	}
}
