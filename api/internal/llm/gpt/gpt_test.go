package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi-advisor/api/internal/llm"
)

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}))
	defer srv.Close()

	e := New("secret", "llama-3.3-70b-versatile", srv.URL+"/").WithHTTPClient(srv.Client())
	out, err := e.Generate(context.Background(), llm.Request{Prompt: "weather?", MaxTokens: 800})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	assert.Equal(t, "llama-3.3-70b-versatile", got["model"])
	assert.Equal(t, 800.0, got["max_tokens"])
	assert.NotContains(t, got, "response_format")
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "weather?", msgs[0].(map[string]any)["content"])
}

func TestGenerateWithImageAndJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	e := New("k", "m", srv.URL).WithHTTPClient(srv.Client())
	_, err := e.Generate(context.Background(), llm.Request{Prompt: "p", Image: []byte{0xff, 0xd8}, JSON: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	parts := got["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", img)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http error", http.StatusTooManyRequests, `{"error":"rate limited"}`, nil},
		{"no choices", http.StatusOK, `{"choices":[]}`, llm.ErrEmptyResponse},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, llm.ErrEmptyResponse},
		{"bad json", http.StatusOK, `not json`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New("k", "m", srv.URL).WithHTTPClient(srv.Client()).Generate(context.Background(), llm.Request{Prompt: "p"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseBytes))
		_, _ = w.Write([]byte(`"}}]}`))
	}))
	defer srv.Close()

	_, err := New("k", "m", srv.URL).WithHTTPClient(srv.Client()).Generate(context.Background(), llm.Request{Prompt: "p"})
	assert.ErrorContains(t, err, "response larger than")
}

func TestGenerateNotConfigured(t *testing.T) {
	_, err := New("", "m", "").Generate(context.Background(), llm.Request{Prompt: "p"})
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
	assert.Equal(t, DefaultBaseURL, New("", "m", "").BaseURL)
}

func TestGenerateHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New("k", "m", srv.URL).WithHTTPClient(srv.Client()).Generate(ctx, llm.Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
