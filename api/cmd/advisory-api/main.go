package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/config"
	"krishi-advisor/api/internal/handle"
	"krishi-advisor/api/internal/httpserver"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llm/gemini"
	"krishi-advisor/api/internal/llm/gpt"
	"krishi-advisor/api/internal/logging"
	"krishi-advisor/api/internal/metrics"
	"krishi-advisor/api/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "advisory-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engines := &llm.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		GPT:    gpt.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL),
	}
	gens, err := engines.Pick(cfg.TextEngine, cfg.VisionEngine, cfg.WeatherEngine)
	if err != nil {
		return err
	}
	svc := advisory.New(advisory.Config{
		Text:    gens[0],
		Vision:  gens[1],
		Weather: gens[2],
		Timeout: cfg.LLMTimeout,
		Logger:  log,
		Metrics: metrics.New(cfg.MetricsNamespace, reg),
	})
	log.Info("llm engines",
		zap.String("text", gens[0].Name()),
		zap.String("vision", gens[1].Name()),
		zap.String("weather", gens[2].Name()))

	opts := handle.Options{DefaultLanguage: cfg.DefaultLanguage, Logger: log}
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err = store.Open(octx, cfg.DatabaseURL)
		if err == nil {
			err = store.Migrate(octx, db)
		}
		cancel()
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("db connected", zap.String("dsn", store.DSNSummary(cfg.DatabaseURL)))
		opts.SoilTests = store.NewSoilTestRepo(db)
		opts.FarmPlans = store.NewFarmPlanRepo(db)
	} else {
		log.Warn("DATABASE_URL not set; soil test storage disabled")
	}

	mux := http.NewServeMux()
	// a nil *sql.DB must not end up inside the Pinger interface
	if db != nil {
		mux.Handle("/healthz", httpserver.Health(db))
	} else {
		mux.Handle("/healthz", httpserver.Health(nil))
	}
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	handle.New(svc, opts).Register(mux)

	return httpserver.Serve(ctx, ":"+cfg.Port, mux, log)
}
