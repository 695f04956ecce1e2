// Package advisory assembles farmer-facing answers from model output, falling
// back to rule-based values whenever the model cannot be used. No method of
// Service returns an error: every call yields a complete value.
package advisory

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
	"krishi-advisor/api/internal/logging"
	"krishi-advisor/api/internal/metrics"
)

// Domain names used in logs and metrics.
const (
	DomainImage    = "verify_image"
	DomainBatch    = "verify_batch"
	DomainAdvisory = "advisory"
	DomainMarket   = "market"
	DomainWeather  = "weather"
	DomainSoil     = "soil"
	DomainCalendar = "calendar"
)

const snippetBytes = 300

type Config struct {
	// Text serves advisory, market, soil and calendar prompts.
	Text llm.Generator
	// Vision serves package-photo verification; Text when nil.
	Vision llm.Generator
	// Weather serves weather alerts; Text when nil.
	Weather llm.Generator
	// Timeout bounds each model call; 0 leaves only the caller's deadline.
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Service struct {
	text    llm.Generator
	vision  llm.Generator
	weather llm.Generator
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config) *Service {
	s := &Service{
		text:    cfg.Text,
		vision:  cfg.Vision,
		weather: cfg.Weather,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
	if s.vision == nil {
		s.vision = s.text
	}
	if s.weather == nil {
		s.weather = s.text
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("component", "advisory"))
	return s
}

// assembly tracks one call through its states.
type assembly struct {
	s      *Service
	domain string
	state  types.State
	log    *zap.Logger
}

func (s *Service) begin(domain string) *assembly {
	return &assembly{s: s, domain: domain, state: types.StateNotStarted, log: s.log.With(zap.String("domain", domain))}
}

func (a *assembly) to(st types.State) {
	a.log.Debug("state", zap.String("from", string(a.state)), zap.String("to", string(st)))
	a.state = st
}

// call runs the model and extracts a JSON value from its text. On failure it
// returns the reason; the caller then falls back.
func (a *assembly) call(ctx context.Context, gen llm.Generator, req llm.Request) (any, types.Reason) {
	a.to(types.StateCallingModel)
	if gen == nil {
		a.log.Warn("no generator configured")
		return nil, types.ReasonTransport
	}

	if a.s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := gen.Generate(ctx, req)
	a.s.metrics.ObserveLLM(gen.Name(), err, time.Since(start))
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		a.log.Warn("model returned no text", zap.String("engine", gen.Name()))
		return nil, types.ReasonEmpty
	case errors.Is(err, llm.ErrNotConfigured):
		a.log.Warn("engine not configured", zap.String("engine", gen.Name()))
		return nil, types.ReasonTransport
	case err != nil:
		a.log.Error("model call failed", zap.String("engine", gen.Name()), zap.Error(err))
		return nil, types.ReasonTransport
	}
	if strings.TrimSpace(text) == "" {
		a.log.Warn("model returned no text", zap.String("engine", gen.Name()))
		return nil, types.ReasonEmpty
	}

	a.to(types.StateExtracting)
	v, ok := llmjson.Extract(text)
	if !ok {
		a.log.Warn("no JSON in model text", zap.Int("len", len(text)), zap.String("raw", logging.Snippet(text, snippetBytes)))
		return nil, types.ReasonParse
	}
	a.to(types.StateNormalizing)
	return v, types.ReasonNone
}

func fellBack[T any](a *assembly, v T, reason types.Reason) types.Result[T] {
	a.to(types.StateFailedFallback)
	a.log.Info("using fallback", zap.String("reason", string(reason)))
	a.s.metrics.Assembled(a.domain, string(types.OutcomeFallback), string(reason))
	return types.Result[T]{Value: v, Outcome: types.OutcomeFallback, Reason: reason, State: types.StateFailedFallback}
}

func accepted[T any](a *assembly, v T, fallbackFields []string) types.Result[T] {
	a.to(types.StateAssembled)
	if len(fallbackFields) > 0 {
		a.log.Info("partial model answer", zap.Strings("fallback_fields", fallbackFields))
	}
	a.s.metrics.Assembled(a.domain, string(types.OutcomeModel), "")
	return types.Result[T]{Value: v, Outcome: types.OutcomeModel, State: types.StateAssembled, FallbackFields: fallbackFields}
}

func ruled[T any](a *assembly, v T) types.Result[T] {
	a.to(types.StateAssembled)
	a.s.metrics.Assembled(a.domain, string(types.OutcomeRules), "")
	return types.Result[T]{Value: v, Outcome: types.OutcomeRules, State: types.StateAssembled}
}
