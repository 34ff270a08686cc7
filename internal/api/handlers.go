package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"okx-trading-core/internal/config"
	"okx-trading-core/pkg/types"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	provider    Provider
	instruments []types.InstrumentID
	cfg         config.APIConfig
	// allowedOrigins is cfg.AllowedOrigins parsed and normalized once at
	// construction, so isOriginAllowed does no URL parsing per request.
	allowedOrigins map[string]struct{}
	hub            *Hub
	logger         *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(provider Provider, instruments []types.InstrumentID, cfg config.APIConfig, hub *Hub, logger *slog.Logger) *Handlers {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, raw := range cfg.AllowedOrigins {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if n := normalizeOrigin(u.Scheme, u.Host); n != "" {
			allowed[n] = struct{}{}
		}
	}

	return &Handlers{
		provider:       provider,
		instruments:    instruments,
		cfg:            cfg,
		allowedOrigins: allowed,
		hub:            hub,
		logger:         logger.With("component", "api-handlers"),
	}
}

// HandleHealth returns a simple health check response
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleSnapshot returns the current engine state
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := BuildSnapshot(h.provider, h.instruments)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("failed to encode snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
}

// HandleWebSocket upgrades the connection and creates a new WebSocket client
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return h.isOriginAllowed(req.Header.Get("Origin"), req.Host)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn)

	snapshot := BuildSnapshot(h.provider, h.instruments)
	data, err := marshalSnapshotEvent(snapshot)
	if err != nil {
		h.logger.Error("failed to marshal initial snapshot", "error", err)
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn("failed to send initial snapshot to client")
	}
}

// isOriginAllowed decides whether a WebSocket upgrade from origin is
// permitted: no Origin header (non-browser clients commonly omit it) is
// always allowed; an explicit allowlist (h.allowedOrigins, precomputed in
// NewHandlers) takes precedence when configured; otherwise the origin must
// be loopback or match the request's own host, matching a single-operator
// monitor's expected deployment rather than a public multi-tenant one.
func (h *Handlers) isOriginAllowed(origin, reqHost string) bool {
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	normalized := normalizeOrigin(originURL.Scheme, originURL.Host)
	if normalized == "" {
		return false
	}

	if len(h.allowedOrigins) > 0 {
		_, ok := h.allowedOrigins[normalized]
		return ok
	}

	host := strings.ToLower(originURL.Hostname())
	if isLoopbackHost(host) {
		return true
	}

	reqHostname := normalizeHost(reqHost)
	return reqHostname != "" && host == reqHostname
}

func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func normalizeOrigin(scheme, host string) string {
	if scheme == "" || host == "" {
		return ""
	}
	return strings.ToLower(scheme) + "://" + strings.ToLower(host)
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(hostport)
}
