package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
)

// ReplyMarkup converts a menu markup descriptor into the library's reply
// markup. It returns nil for menu.MarkupNone.
func ReplyMarkup(m menu.Markup) models.ReplyMarkup {
	switch m.Kind {
	case menu.MarkupRemoveKeyboard:
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}

	case menu.MarkupReplyKeyboard, menu.MarkupContactLocationRequest:
		rows := make([][]models.KeyboardButton, 0, len(m.Rows))
		for _, row := range m.Rows {
			buttons := make([]models.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.KeyboardButton{
					Text:            b.Text,
					RequestContact:  b.RequestContact,
					RequestLocation: b.RequestLocation,
				})
			}
			rows = append(rows, buttons)
		}
		return &models.ReplyKeyboardMarkup{
			Keyboard:       rows,
			ResizeKeyboard: m.Resize,
		}

	case menu.MarkupInlineKeyboard:
		rows := make([][]models.InlineKeyboardButton, 0, len(m.Rows))
		for _, row := range m.Rows {
			buttons := make([]models.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.InlineKeyboardButton{
					Text:         b.Text,
					CallbackData: b.CallbackData,
				})
			}
			rows = append(rows, buttons)
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}
	return nil
}
