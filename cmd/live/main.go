// Command live runs the trading core against the real OKX venue: it dials
// the public and private WebSocket sessions, drives one OfiMomentum signal
// plus NaiveLimitExecutor pair per configured instrument through the
// cooperative Engine loop, and optionally exposes the read-only monitoring
// API.
//
// Mirrors the teacher's cmd/bot/main.go lifecycle: load config, build a
// root logger, wire the domain objects, start the optional API server,
// run until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"okx-trading-core/internal/api"
	"okx-trading-core/internal/broker"
	"okx-trading-core/internal/config"
	"okx-trading-core/internal/okx"
	"okx-trading-core/internal/strategy"
	"okx-trading-core/pkg/types"
)

const (
	publicWSURL      = "wss://ws.okx.com:8443/ws/v5/public"
	privateWSURL     = "wss://ws.okx.com:8443/ws/v5/private"
	publicWSURLDemo  = "wss://wspap.okx.com:8443/ws/v5/public"
	privateWSURLDemo = "wss://wspap.okx.com:8443/ws/v5/private"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("OKX_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(newHandler(cfg.Logging))

	profiles, err := config.LoadInstrumentProfiles(cfg.InstrumentProfilePath)
	if err != nil {
		logger.Error("failed to load instrument profiles", "error", err)
		os.Exit(1)
	}

	instruments := make([]types.InstrumentID, len(cfg.Instruments))
	for i, s := range cfg.Instruments {
		instruments[i] = types.InstrumentID(s)
	}

	strategies := make(map[types.InstrumentID]strategy.Strategy, len(instruments))
	for _, inst := range instruments {
		profile, ok := profiles[inst]
		if !ok {
			logger.Error("no instrument profile configured", "instrument", inst)
			os.Exit(1)
		}
		signaler := strategy.NewOfiMomentum(cfg.Strategy.WindowOfiMs, cfg.Strategy.WindowEmaMs, cfg.Strategy.Theta)
		executor, err := strategy.NewNaiveLimitExecutor(
			inst,
			cfg.Strategy.Notional,
			profile.SizeDigits, profile.PriceDigits,
			cfg.Strategy.PriceOffset,
			cfg.Strategy.HoldingMs, cfg.Strategy.EventIntervalMs,
			cfg.Strategy.OrderIDTag,
		)
		if err != nil {
			logger.Error("failed to build executor", "instrument", inst, "error", err)
			os.Exit(1)
		}
		strategies[inst] = strategy.NewSignalExecuteStrategy(signaler, executor)
	}
	strat := strategy.NewMultiInstrumentStrategy(strategies)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wsPublic, wsPrivate := publicWSURL, privateWSURL
	if cfg.Okx.Demo {
		wsPublic, wsPrivate = publicWSURLDemo, privateWSURLDemo
	}
	creds := okx.Credentials{
		APIKey:     cfg.Okx.APIKey,
		SecretKey:  cfg.Okx.SecretKey,
		Passphrase: cfg.Okx.Passphrase,
	}
	liveBroker, err := okx.NewBroker(
		ctx, wsPublic, wsPrivate, creds, instruments, profiles,
		cfg.Okx.HeartbeatInterval, cfg.Okx.HeartbeatTimeout,
	)
	if err != nil {
		logger.Error("failed to build live broker", "error", err)
		os.Exit(1)
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API, liveBroker, instruments, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("monitoring server failed", "error", err)
			}
		}()
		logger.Info("monitoring server started", "url", fmt.Sprintf("http://localhost:%d", cfg.API.Port))
	}

	logger.Info("trading core started", "instruments", cfg.Instruments, "demo", cfg.Okx.Demo)

	eng := broker.NewEngine(liveBroker, strat)
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("engine stopped with error", "error", err)
	}

	logger.Info("shutting down")
	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			logger.Error("failed to stop monitoring server", "error", err)
		}
	}
}

func newHandler(cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
