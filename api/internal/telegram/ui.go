package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"krishi-advisor/api/internal/advisory/types"
)

const langCallbackPrefix = "lang:"

// keyboardLanguages are offered as buttons; /lang <code> accepts every
// supported code.
var keyboardLanguages = []struct {
	lang  types.Language
	label string
}{
	{types.Hindi, "हिंदी"},
	{types.English, "English"},
	{types.Marathi, "मराठी"},
	{types.Gujarati, "ગુજરાતી"},
}

func makeLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(keyboardLanguages))
	for _, l := range keyboardLanguages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(l.label, langCallbackPrefix+string(l.lang)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
