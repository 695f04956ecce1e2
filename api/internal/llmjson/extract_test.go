package llmjson

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{
			name: "fenced json block",
			raw:  "Here you go:\n```json\n{\"summary\": \"ok\"}\n```\nthanks",
			want: map[string]any{"summary": "ok"},
		},
		{
			name: "fenced block without language tag",
			raw:  "```\n[1, 2]\n```",
			want: []any{1.0, 2.0},
		},
		{
			name: "bare array with prose",
			raw:  "Prices: [{\"item\":\"Wheat\",\"avgPrice\":2275}] end",
			want: []any{map[string]any{"item": "Wheat", "avgPrice": 2275.0}},
		},
		{
			name: "object wrapping an array keeps the object",
			raw:  "Result {\"crops\": [\"wheat\", \"gram\"], \"n\": 1} done",
			want: map[string]any{"crops": []any{"wheat", "gram"}, "n": 1.0},
		},
		{
			name: "trailing commas in object",
			raw:  "{\"a\": [1, 2,], \"b\": {\"c\": 3,},}",
			want: map[string]any{"a": []any{1.0, 2.0}, "b": map[string]any{"c": 3.0}},
		},
		{
			name: "nested objects",
			raw:  "x {\"a\": {\"b\": {\"c\": true}}} y",
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": true}}},
		},
		{
			name: "broken fence falls through to bracket scan",
			raw:  "```json\nnot json\n``` and then {\"ok\": 1}",
			want: map[string]any{"ok": 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.raw)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractNone(t *testing.T) {
	for _, raw := range []string{
		"",
		"   \n\t ",
		"I am unable to help with that.",
		"{\"unterminated\": ",
		"[1, 2",
		"{not: json}",
	} {
		got, ok := Extract(raw)
		assert.False(t, ok, "raw=%q", raw)
		assert.Nil(t, got, "raw=%q", raw)
	}
}

// Bracket matching does not skip string literals. A closing bracket inside
// a string ends the candidate early and the parse fails.
func TestExtractBracketInsideString(t *testing.T) {
	_, ok := Extract(`{"note": "use } sparingly", "x": 1}`)
	assert.False(t, ok)

	// balanced brackets inside strings are harmless
	got, ok := Extract(`{"note": "see {x}", "x": 1}`)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"note": "see {x}", "x": 1.0}, got)
}

func TestExtractIdempotent(t *testing.T) {
	doc := `{"summary":"Soil is fine","warnings":["a","b"],"n":{"x":[1,{"y":2}]}}`
	want, ok := decode(doc)
	require.True(t, ok)

	for _, raw := range []string{
		doc,
		"```json\n" + doc + "\n```",
		"Sure! " + doc + " Let me know.",
	} {
		got, ok := Extract(raw)
		require.True(t, ok)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Extract(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestExtractFirstBracketWins(t *testing.T) {
	got, ok := Extract(`Result: {"crops": ["ragi", "jowar"]}`)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"crops": []any{"ragi", "jowar"}}, got)

	got, ok = Extract(`Alerts: [{"type": "RAIN"}] (see {details})`)
	require.True(t, ok)
	assert.Equal(t, []any{map[string]any{"type": "RAIN"}}, got)
}

func TestStripTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripTrailingCommas(`{"a":1,}`))
	assert.Equal(t, `[1,2 ]`, StripTrailingCommas(`[1,2, ]`))
	assert.Equal(t, `{"a":"x,y"}`, StripTrailingCommas(`{"a":"x,y"}`))
}
