package telegram

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// DecodeUpdate parses a webhook body into a domain update.
func DecodeUpdate(data []byte) (update.Update, error) {
	var raw models.Update
	if err := json.Unmarshal(data, &raw); err != nil {
		return update.Update{}, shared.WrapError("telegram", "DecodeUpdate", shared.ErrMalformedUpdate, "invalid update JSON", err)
	}
	return ConvertUpdate(&raw), nil
}

// ConvertUpdate maps a library update onto the domain tagged union.
func ConvertUpdate(u *models.Update) update.Update {
	out := update.Update{ID: int64(u.ID)}

	switch {
	case u.Message != nil:
		out.Kind = update.KindMessage
		out.Message = convertMessage(u.Message)
		out.SenderID = senderID(u.Message.From)

	case u.EditedMessage != nil:
		out.Kind = update.KindEditedMessage
		out.Message = convertMessage(u.EditedMessage)
		out.SenderID = senderID(u.EditedMessage.From)

	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		out.Kind = update.KindCallbackQuery
		out.SenderID = int64(cb.From.ID)
		out.CallbackQuery = &update.CallbackQuery{
			ID:     cb.ID,
			ChatID: callbackChatID(cb),
			Data:   cb.Data,
		}

	case u.InlineQuery != nil:
		out.Kind = update.KindInlineQuery
		out.SenderID = senderID(u.InlineQuery.From)
		out.InlineQuery = &update.InlineQuery{
			ID:    u.InlineQuery.ID,
			Query: u.InlineQuery.Query,
		}

	case u.ChosenInlineResult != nil:
		out.Kind = update.KindChosenInlineResult
		out.SenderID = int64(u.ChosenInlineResult.From.ID)
		out.ChosenInlineResult = &update.ChosenInlineResult{
			ResultID: u.ChosenInlineResult.ResultID,
			Query:    u.ChosenInlineResult.Query,
		}

	default:
		out.Kind = update.KindOther
		out.RawType = otherType(u)
	}

	return out
}

func convertMessage(m *models.Message) *update.Message {
	return &update.Message{
		ID:      int(m.ID),
		ChatID:  int64(m.Chat.ID),
		Content: contentType(m),
		Text:    m.Text,
	}
}

// contentType classifies a message. Animation is checked before Document
// and Venue before Location since the platform sets both on those messages.
func contentType(m *models.Message) update.ContentType {
	switch {
	case m.Text != "":
		return update.ContentText
	case len(m.Photo) > 0:
		return update.ContentPhoto
	case m.Sticker != nil:
		return update.ContentSticker
	case m.Animation != nil:
		return update.ContentAnimation
	case m.Document != nil:
		return update.ContentDocument
	case m.Audio != nil:
		return update.ContentAudio
	case m.Voice != nil:
		return update.ContentVoice
	case m.VideoNote != nil:
		return update.ContentVideoNote
	case m.Video != nil:
		return update.ContentVideo
	case m.Contact != nil:
		return update.ContentContact
	case m.Venue != nil:
		return update.ContentVenue
	case m.Location != nil:
		return update.ContentLocation
	case m.Poll != nil:
		return update.ContentPoll
	case m.Dice != nil:
		return update.ContentDice
	}
	return update.ContentUnknown
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb.Message.Message != nil:
		return int64(cb.Message.Message.Chat.ID)
	case cb.Message.InaccessibleMessage != nil:
		return int64(cb.Message.InaccessibleMessage.Chat.ID)
	}
	return 0
}

// senderID returns 0 for updates without a sender, such as channel posts.
func senderID(u *models.User) int64 {
	if u == nil {
		return 0
	}
	return int64(u.ID)
}

func otherType(u *models.Update) string {
	switch {
	case u.ChannelPost != nil:
		return "channel_post"
	case u.EditedChannelPost != nil:
		return "edited_channel_post"
	case u.ShippingQuery != nil:
		return "shipping_query"
	case u.PreCheckoutQuery != nil:
		return "pre_checkout_query"
	case u.Poll != nil:
		return "poll"
	case u.PollAnswer != nil:
		return "poll_answer"
	case u.MyChatMember != nil:
		return "my_chat_member"
	case u.ChatMember != nil:
		return "chat_member"
	case u.ChatJoinRequest != nil:
		return "chat_join_request"
	}
	return "unknown"
}
