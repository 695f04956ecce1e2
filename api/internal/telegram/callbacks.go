package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil { // ack
		r.log.Debug("callback ack", zap.Error(err))
	}

	if code, ok := strings.CutPrefix(cb.Data, langCallbackPrefix); ok {
		r.setLanguage(cid, code)
		// drop the keyboard
		edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{})
		_, _ = r.Bot.Send(edit)
	}
}

func (r *Router) setLanguage(chatID int64, code string) {
	l := types.Language(strings.ToLower(strings.TrimSpace(code)))
	if !l.Valid() {
		msg := tgbotapi.NewMessage(chatID, fallback.Label(r.lang(chatID), "lang_choose"))
		msg.ReplyMarkup = makeLanguageKeyboard()
		r.sendMsg(msg)
		return
	}
	r.langs.set(chatID, l)
	r.send(chatID, fallback.Label(l, "lang_set")+" "+l.Name())
}
