package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/config"
	"krishi-advisor/api/internal/httpserver"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llm/gemini"
	"krishi-advisor/api/internal/llm/gpt"
	"krishi-advisor/api/internal/logging"
	"krishi-advisor/api/internal/store"
	"krishi-advisor/api/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireBot(); err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	})
	log.Info("llm engines",
		zap.String("text", gens[0].Name()),
		zap.String("vision", gens[1].Name()),
		zap.String("weather", gens[2].Name()))

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false

	opts := telegram.Options{DefaultLanguage: cfg.DefaultLanguage, Logger: log}
	mux := http.NewServeMux()
	if cfg.DatabaseURL != "" {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := store.Open(octx, cfg.DatabaseURL)
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
		mux.Handle("/healthz", httpserver.Health(db))
	} else {
		mux.Handle("/healthz", httpserver.Health(nil))
	}
	r := telegram.NewRouter(bot, svc, opts)

	var wg sync.WaitGroup
	dispatch := func(upd tgbotapi.Update) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.HandleUpdate(ctx, upd)
		}()
	}
	defer wg.Wait()

	addr := "0.0.0.0:" + cfg.Port
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		return startWebhookMode(ctx, addr, mux, bot, webhookURL, dispatch, log)
	}
	return startPollingMode(ctx, addr, mux, bot, dispatch, log)
}

// ---------------- Modes -----------------

func startWebhookMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, baseURL string, dispatch func(tgbotapi.Update), log *zap.Logger) error {
	// secret webhook path
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("bad webhook update", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dispatch(*upd)
	})

	log.Info("webhook mode", zap.String("path", path))
	return httpserver.Serve(ctx, addr, mux, log)
}

func startPollingMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, dispatch func(tgbotapi.Update), log *zap.Logger) error {
	// a webhook left over from an earlier deploy blocks getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("delete webhook", zap.Error(err))
	}

	errc := make(chan error, 1)
	go func() { errc <- httpserver.Serve(ctx, addr, mux, log) }()

	log.Info("polling mode")
	runPolling(ctx, bot, dispatch, log)
	return <-errc
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 from Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

type updateGetter interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot updateGetter, handle func(tgbotapi.Update), log *zap.Logger) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling, seconds

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

// shortHash is a stable FNV-1a of the token, used as the webhook path.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
