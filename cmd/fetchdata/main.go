package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockBoard/internal/collector"
	"StockBoard/internal/config"
	"StockBoard/internal/fetcher"
	"StockBoard/internal/fx"
	"StockBoard/internal/notifier"
	"StockBoard/internal/ratelimit"
	"StockBoard/internal/recorder"
	"StockBoard/internal/scheduler"
	"StockBoard/internal/snapshot"
	"StockBoard/internal/stooq"
)

func main() {
	schedule := flag.String("schedule", "", "cron spec (seconds first); overrides schedule.cron and keeps the process running")
	flag.Parse()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogger(cfg.Log.Level, cfg.Log.Console)

	if err := cfg.Validate(); err != nil {
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			log.Fatal().Str("env", missing.Env).Msg(missing.Error())
		}
		log.Fatal().Err(err).Msg("config validation")
	}
	if !cfg.FundamentalsEnabled() {
		log.Warn().Msg("ALPHA_KEY not set, fundamentals are skipped")
	}

	// Ctrl+C cancels a one-shot run or stops the daemon.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := newRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	runner := newRunner(cfg, rec)

	if *schedule != "" {
		cfg.Schedule.Cron = *schedule
	}
	if cfg.Schedule.Cron == "" {
		code := 0
		if _, err := runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("run failed")
			code = 1
		}
		rec.Close()
		os.Exit(code)
	}

	sched := scheduler.NewScheduler(ctx, runner)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register schedule")
	}
	sched.Start()
	log.Info().Str("cron", cfg.Schedule.Cron).Strs("symbols", cfg.Symbols).Msg("StockBoard is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
}

func setupLogger(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newRunner(cfg *config.Config, rec recorder.Recorder) *scheduler.Runner {
	policy := fetcher.DefaultRetryPolicy()
	policy.MaxRetries = cfg.HTTP.Retries
	policy.BaseDelay = cfg.HTTP.RetryDelay
	f := fetcher.New(
		fetcher.WithHTTPClient(fetcher.NewHTTPClient(cfg.HTTP.Timeout, cfg.Proxy)),
		fetcher.WithRetryPolicy(policy),
		fetcher.WithUserAgent(cfg.HTTP.UserAgent),
	)

	st := stooq.NewClient(cfg.Stooq.BaseURL, f)
	resolver := fx.NewResolver(
		fx.NewExchangeRateHost(cfg.FX.ExchangeRateHostURL, f),
		fx.NewECB(cfg.FX.ECBURL, f),
		fx.NewStooqPair(cfg.FX.StooqPair, st),
	)

	// A nil *AlphaVantage must not reach the interface field.
	var fundamentals collector.FundamentalsSource
	if cfg.FundamentalsEnabled() {
		fundamentals = collector.NewAlphaVantage(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, f)
	}
	col := collector.NewCollector(
		collector.NewFinnhub(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, f),
		st,
		fundamentals,
		ratelimit.NewThrottle(cfg.AlphaVantage.MinInterval),
	)

	runner := &scheduler.Runner{
		Symbols:   cfg.Symbols,
		FX:        resolver,
		Collector: col,
		Writer:    snapshot.NewFileWriter(cfg.Output.Path),
		Recorder:  rec,
	}
	if cfg.NotifyEnabled() {
		runner.Notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Info().Msg("telegram run summaries enabled")
	}
	return runner
}
