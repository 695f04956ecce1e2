package llmjson

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// String accepts a string whose trimmed length is at least min runes.
func String(v Value, min int) (string, bool) {
	if !v.Present {
		return "", false
	}
	s, ok := v.Raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < min {
		return "", false
	}
	return s, true
}

// StringOr returns the validated string or def.
func StringOr(v Value, min int, def string) string {
	if s, ok := String(v, min); ok {
		return s
	}
	return def
}

// List accepts a JSON array with at least one element.
func List(v Value) ([]any, bool) {
	if !v.Present {
		return nil, false
	}
	arr, ok := v.Raw.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	return arr, true
}

// StringList accepts a non-empty array and keeps its non-blank string (or
// numeric) elements. It fails if nothing usable is left.
func StringList(v Value) ([]string, bool) {
	arr, ok := List(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		switch t := el.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// RecordList accepts a non-empty array of objects whose first element has at
// least one of the given identifying sub-fields populated. Sub-field names
// match the same way Normalize does. Non-object elements are skipped.
func RecordList(v Value, identifying ...string) ([]map[string]any, bool) {
	arr, ok := List(v)
	if !ok {
		return nil, false
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return nil, false
	}
	ids := make([]Field, 0, len(identifying))
	for _, name := range identifying {
		ids = append(ids, F(name))
	}
	head := Normalize(first, ids)
	populated := false
	for _, name := range identifying {
		if _, ok := String(head[name], 1); ok {
			populated = true
			break
		}
	}
	if !populated {
		return nil, false
	}
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}

// Number accepts anything coercible to a finite float: JSON numbers and
// numeric strings.
func Number(v Value) (float64, bool) {
	if !v.Present {
		return 0, false
	}
	var f float64
	switch t := v.Raw.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Object accepts a JSON object.
func Object(v Value) (map[string]any, bool) {
	if !v.Present {
		return nil, false
	}
	m, ok := v.Raw.(map[string]any)
	return m, ok
}
