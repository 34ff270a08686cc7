// Command backtest replays historical trade/BBO ticks through the
// deterministic SandboxBroker and the same strategy cmd/live runs, then
// writes the resulting equity curve to a CSV report — the Go-native
// equivalent of bin/backtest.rs's get_bbo_history_provider ->
// SandboxBroker -> reporter.to_csv pipeline.
//
// Since this module's persisted-history store is a contract only (no SQL
// driver wired, per spec), history here comes from two CSV fixture files
// matching the okx_trades/okx_bbo schemas in internal/store, rather than a
// live Postgres query.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"okx-trading-core/internal/broker"
	"okx-trading-core/internal/config"
	"okx-trading-core/internal/report"
	"okx-trading-core/internal/store"
	"okx-trading-core/internal/stream"
	"okx-trading-core/internal/strategy"
	"okx-trading-core/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("OKX_CONFIG"); p != "" {
		cfgPath = p
	}
	tradesPath := envOr("OKX_BACKTEST_TRADES", "testdata/trades.csv")
	bboPath := envOr("OKX_BACKTEST_BBO", "testdata/bbo.csv")
	reportPath := envOr("OKX_BACKTEST_REPORT", "report.csv")

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

	records, err := loadHistoryRecords(tradesPath, bboPath)
	if err != nil {
		logger.Error("failed to load history fixtures", "error", err)
		os.Exit(1)
	}
	level1 := store.MergeLevel1(stream.NewSliceSource(records))

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

	const startingCash = 100_000.0
	const reportFrequencyMs = 60_000
	costModel := broker.NewOkxCostModel(0)

	ctx := context.Background()
	sandbox, err := broker.NewSandboxBroker(ctx, level1, instruments, startingCash, costModel, reportFrequencyMs)
	if err != nil {
		logger.Error("failed to initialize sandbox broker", "error", err)
		os.Exit(1)
	}

	eng := broker.NewEngine(sandbox, strat)
	if err := eng.Run(ctx); err != nil {
		logger.Error("backtest run ended with error", "error", err)
		os.Exit(1)
	}

	reporter := sandbox.Reporter()
	reporter.End()
	history := reporter.History()
	if err := report.WriteCSV(reportPath, history); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	logger.Info("backtest complete", "report", reportPath, "samples", len(history), "sharpe", report.Sharpe(history))
}

// loadHistoryRecords reads the two CSV fixture files and merges them into
// one time-ascending HistoryRecord stream, the shape store.MergeLevel1
// expects from a real Query call.
func loadHistoryRecords(tradesPath, bboPath string) ([]store.HistoryRecord, error) {
	trades, err := readTradeRows(tradesPath)
	if err != nil {
		return nil, fmt.Errorf("read trades fixture: %w", err)
	}
	bbos, err := readBboRows(bboPath)
	if err != nil {
		return nil, fmt.Errorf("read bbo fixture: %w", err)
	}

	records := make([]store.HistoryRecord, 0, len(trades)+len(bbos))
	for _, t := range trades {
		records = append(records, store.HistoryRecord{
			Kind: store.RecordTrade,
			Trade: types.Trade{
				Ts: t.Ts, InstrumentID: t.InstrumentID, TradeID: t.TradeID,
				Price: decimalToFloat(t.Price), Size: decimalToFloat(t.Size),
				Side: t.Side, OrderCount: t.OrderCount,
			},
		})
	}
	for _, b := range bbos {
		records = append(records, store.HistoryRecord{
			Kind: store.RecordBbo,
			Bbo: types.Bbo{
				Ts: b.Ts, InstrumentID: b.InstrumentID,
				BidPrice: decimalToFloat(b.PriceBid), BidSize: decimalToFloat(b.SizeBid),
				AskPrice: decimalToFloat(b.PriceAsk), AskSize: decimalToFloat(b.SizeAsk),
			},
		})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].GetTs() < records[j].GetTs() })
	return records, nil
}

func decimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func readTradeRows(path string) ([]store.TradeRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.TradeRow, 0, len(rows))
	for _, rec := range rows {
		ts, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ts: %w", err)
		}
		price, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		size, err := decimal.NewFromString(rec[4])
		if err != nil {
			return nil, fmt.Errorf("parse size: %w", err)
		}
		orderCount, err := strconv.ParseInt(rec[6], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse order_count: %w", err)
		}
		out = append(out, store.TradeRow{
			Ts:           ts,
			InstrumentID: types.InstrumentID(rec[1]),
			TradeID:      rec[2],
			Price:        price,
			Size:         size,
			Side:         types.Side(rec[5] == "true"),
			OrderCount:   int32(orderCount),
		})
	}
	return out, nil
}

func readBboRows(path string) ([]store.BboRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.BboRow, 0, len(rows))
	for _, rec := range rows {
		ts, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ts: %w", err)
		}
		priceAsk, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("parse price_ask: %w", err)
		}
		sizeAsk, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("parse size_ask: %w", err)
		}
		priceBid, err := decimal.NewFromString(rec[5])
		if err != nil {
			return nil, fmt.Errorf("parse price_bid: %w", err)
		}
		sizeBid, err := decimal.NewFromString(rec[6])
		if err != nil {
			return nil, fmt.Errorf("parse size_bid: %w", err)
		}
		out = append(out, store.BboRow{
			Ts:           ts,
			InstrumentID: types.InstrumentID(rec[1]),
			PriceAsk:     priceAsk,
			SizeAsk:      sizeAsk,
			PriceBid:     priceBid,
			SizeBid:      sizeBid,
		})
	}
	return out, nil
}

// readCSV reads a headerless CSV fixture file into raw records.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
