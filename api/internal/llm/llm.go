package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned by an engine without credentials.
	ErrNotConfigured = errors.New("llm: engine not configured")
	// ErrEmptyResponse is returned when the provider answered without text.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrUnknownEngine is returned by GetEngine for an unsupported name.
	ErrUnknownEngine = errors.New("llm: unknown engine; use 'gemini' or 'gpt'")
)

// Request is one prompt, optionally with a single image.
type Request struct {
	Prompt    string
	Image     []byte
	MIMEType  string // of Image; image/jpeg when empty
	MaxTokens int    // 0 = provider default
	JSON      bool   // ask the provider for a JSON response where supported
}

// Generator turns a prompt into free-form text. Implementations must honor
// ctx cancellation.
type Generator interface {
	Name() string
	Generate(ctx context.Context, in Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, in Request) (string, error)

func (f GeneratorFunc) Name() string { return "func" }

func (f GeneratorFunc) Generate(ctx context.Context, in Request) (string, error) {
	return f(ctx, in)
}

// Engines holds the configured backends by provider.
type Engines struct {
	Gemini Generator
	GPT    Generator
}

// GetEngine resolves a provider name; "google" and "openai"/"groq" are
// accepted as aliases.
func (e *Engines) GetEngine(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini", "google":
		if e.Gemini == nil {
			return nil, ErrNotConfigured
		}
		return e.Gemini, nil
	case "gpt", "openai", "groq":
		if e.GPT == nil {
			return nil, ErrNotConfigured
		}
		return e.GPT, nil
	default:
		return nil, ErrUnknownEngine
	}
}

// Pick resolves several provider names in order, failing on the first one
// that is unknown or not configured.
func (e *Engines) Pick(names ...string) ([]Generator, error) {
	out := make([]Generator, 0, len(names))
	for _, n := range names {
		g, err := e.GetEngine(n)
		if err != nil {
			return nil, fmt.Errorf("llm engine %q: %w", n, err)
		}
		out = append(out, g)
	}
	return out, nil
}
