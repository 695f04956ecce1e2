package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reFence         = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// Extract pulls the first JSON value out of free-form model text.
//
// Order of attempts: a fenced ``` / ```json block, then the bracketed
// candidate whose opening bracket comes first in the text ('[' ... ']' or
// '{' ... '}'), then the other one. Object candidates get one retry with
// trailing commas removed. The bracket that opens first wins rather than
// always trying arrays first, so an object holding a list is not reduced to
// that list and Extract stays idempotent. Returns (nil, false) when nothing
// parses; that is an expected outcome, not an error.
//
// Known limitation: bracket matching counts raw characters and does not skip
// string literals, so a value such as "see [note" inside a string can make
// the scanner pick the wrong closing bracket.
func Extract(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}

	if m := reFence.FindStringSubmatch(s); m != nil {
		if v, ok := decode(strings.TrimSpace(m[1])); ok {
			return v, true
		}
	}

	iArr := strings.IndexByte(s, '[')
	iObj := strings.IndexByte(s, '{')
	arrayFirst := iArr >= 0 && (iObj < 0 || iArr < iObj)

	if arrayFirst {
		if v, ok := extractArray(s, iArr); ok {
			return v, true
		}
	}
	if iObj >= 0 {
		if v, ok := extractObject(s, iObj); ok {
			return v, true
		}
	}
	if !arrayFirst && iArr >= 0 {
		if v, ok := extractArray(s, iArr); ok {
			return v, true
		}
	}
	return nil, false
}

func extractArray(s string, start int) (any, bool) {
	end := matchBracket(s, start, '[', ']')
	if end < 0 {
		return nil, false
	}
	return decode(s[start:end])
}

func extractObject(s string, start int) (any, bool) {
	end := matchBracket(s, start, '{', '}')
	if end < 0 {
		return nil, false
	}
	candidate := s[start:end]
	if v, ok := decode(candidate); ok {
		return v, true
	}
	return decode(StripTrailingCommas(candidate))
}

// matchBracket returns the index just past the bracket closing the one at
// start, or -1 if the text ends first.
func matchBracket(s string, start int, open, close byte) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// StripTrailingCommas removes a comma that directly precedes a closing } or ].
func StripTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}

func decode(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}
