package telegram

import (
	"sync"

	"krishi-advisor/api/internal/advisory/types"
)

// langState remembers the language picked in each chat. It lives only as long
// as the process.
type langState struct {
	m sync.Map // chatID -> types.Language
}

func (s *langState) get(chatID int64, def types.Language) types.Language {
	if v, ok := s.m.Load(chatID); ok {
		if l, _ := v.(types.Language); l != "" {
			return l
		}
	}
	return def
}

func (s *langState) set(chatID int64, l types.Language) { s.m.Store(chatID, l) }
