// Package util holds helpers for image payloads arriving as base64 or data
// URLs.
package util

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const defaultImageMIME = "image/jpeg"

var ErrEmptyImage = errors.New("empty image")

// SniffImageMIME recognizes JPEG, PNG and WEBP by their magic bytes and
// returns "" for anything else.
func SniffImageMIME(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "image/jpeg"
	case len(b) >= 8 && bytes.Equal(b[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp"
	}
	return ""
}

func MakeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64MaybeDataURL decodes plain base64 or a data: URI. For a data:
// URI the declared MIME type is returned as well.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	if s == "" {
		return nil, "", ErrEmptyImage
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b2, err2 := base64.URLEncoding.DecodeString(s)
		if err2 != nil {
			return nil, "", err
		}
		b = b2
	}
	if len(b) == 0 {
		return nil, "", ErrEmptyImage
	}
	return b, hintMIME, nil
}

// PickMIME prefers the explicit type, then the data: URI hint, then the
// sniffed type, and defaults to image/jpeg.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if m := SniffImageMIME(data); m != "" {
		return m
	}
	if len(data) > 0 {
		if m := http.DetectContentType(data); strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return defaultImageMIME
}
