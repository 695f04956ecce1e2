package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/util"
)

const maxAttempts = 3

type Engine struct {
	APIKey string
	Model  string
	// Temperature of every request; the advisory prompts want some variety
	// in wording but stable structure.
	Temperature float32
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey:      strings.TrimSpace(apiKey),
		Model:       strings.TrimSpace(model),
		Temperature: 0.2,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate sends the prompt (and image, if any) and returns the concatenated
// text of the first candidate. Transient failures are retried.
func (e *Engine) Generate(ctx context.Context, in llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("gemini: GEMINI_API_KEY is empty: %w", llm.ErrNotConfigured)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: new client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(e.Temperature),
	}
	if in.JSON {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if in.MaxTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(in.MaxTokens))
	}

	parts := make([]genai.Part, 0, 2)
	if len(in.Image) > 0 {
		parts = append(parts, genai.Blob{MIMEType: util.PickMIME(in.MIMEType, "", in.Image), Data: in.Image})
	}
	parts = append(parts, genai.Text(in.Prompt))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if attempt == maxAttempts {
				break
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("gemini: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := candidateText(resp)
		if strings.TrimSpace(txt) == "" {
			return "", fmt.Errorf("gemini: %w", llm.ErrEmptyResponse)
		}
		return txt, nil
	}
	return "", fmt.Errorf("gemini: generate: %w", lastErr)
}

// candidateText joins the text parts of the first candidate that has any.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
