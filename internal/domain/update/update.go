// Package update defines the transport-neutral inbound event the dispatcher
// consumes. An Update is built once per inbound event by a transport adapter
// and is never mutated afterwards.
package update

import "fmt"

// Kind identifies which variant of Update is populated.
type Kind int

const (
	KindOther Kind = iota
	KindMessage
	KindEditedMessage
	KindCallbackQuery
	KindInlineQuery
	KindChosenInlineResult
)

var kindNames = map[Kind]string{
	KindOther:              "Unknown",
	KindMessage:            "Message",
	KindEditedMessage:      "EditedMessage",
	KindCallbackQuery:      "CallbackQuery",
	KindInlineQuery:        "InlineQuery",
	KindChosenInlineResult: "ChosenInlineResult",
}

// String returns the variant name as it appears in logs and metrics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ContentType classifies what a message carries.
type ContentType int

const (
	ContentUnknown ContentType = iota
	ContentText
	ContentPhoto
	ContentSticker
	ContentDocument
	ContentAudio
	ContentVoice
	ContentVideo
	ContentVideoNote
	ContentAnimation
	ContentContact
	ContentLocation
	ContentVenue
	ContentPoll
	ContentDice
)

var contentNames = map[ContentType]string{
	ContentUnknown:   "Unknown",
	ContentText:      "Text",
	ContentPhoto:     "Photo",
	ContentSticker:   "Sticker",
	ContentDocument:  "Document",
	ContentAudio:     "Audio",
	ContentVoice:     "Voice",
	ContentVideo:     "Video",
	ContentVideoNote: "VideoNote",
	ContentAnimation: "Animation",
	ContentContact:   "Contact",
	ContentLocation:  "Location",
	ContentVenue:     "Venue",
	ContentPoll:      "Poll",
	ContentDice:      "Dice",
}

func (c ContentType) String() string {
	if name, ok := contentNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ContentType(%d)", int(c))
}

// Message is the payload of KindMessage and KindEditedMessage.
type Message struct {
	ID      int
	ChatID  int64
	Content ContentType
	Text    string
}

// CallbackQuery is the payload of KindCallbackQuery. ChatID is zero when the
// originating message is unavailable (inline-mode buttons).
type CallbackQuery struct {
	ID     string
	ChatID int64
	Data   string
}

// InlineQuery is the payload of KindInlineQuery.
type InlineQuery struct {
	ID    string
	Query string
}

// ChosenInlineResult is the payload of KindChosenInlineResult.
type ChosenInlineResult struct {
	ResultID string
	Query    string
}

// Update is a tagged union over the inbound event variants. Exactly the
// payload matching Kind is non-nil; KindOther carries none.
type Update struct {
	ID       int64
	Kind     Kind
	SenderID int64

	// RawType names the platform variant for KindOther (e.g. "poll_answer").
	RawType string

	Message            *Message
	CallbackQuery      *CallbackQuery
	InlineQuery        *InlineQuery
	ChosenInlineResult *ChosenInlineResult
}

// ChatID returns the conversation the update belongs to, or 0 if it has none.
func (u Update) ChatID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.ChatID
	case u.CallbackQuery != nil:
		return u.CallbackQuery.ChatID
	}
	return 0
}

// TypeName returns the label used for "Receive message type" logging.
func (u Update) TypeName() string {
	if u.Kind == KindOther && u.RawType != "" {
		return u.RawType
	}
	return u.Kind.String()
}

// Validate reports whether the payload matches the declared Kind.
func (u Update) Validate() error {
	switch u.Kind {
	case KindMessage, KindEditedMessage:
		if u.Message == nil {
			return fmt.Errorf("%s update without message payload", u.Kind)
		}
	case KindCallbackQuery:
		if u.CallbackQuery == nil {
			return fmt.Errorf("%s update without callback payload", u.Kind)
		}
	case KindInlineQuery:
		if u.InlineQuery == nil {
			return fmt.Errorf("%s update without inline query payload", u.Kind)
		}
	case KindChosenInlineResult:
		if u.ChosenInlineResult == nil {
			return fmt.Errorf("%s update without chosen result payload", u.Kind)
		}
	}
	return nil
}

// NewText builds a text message update. Used by transports and tests.
func NewText(chatID int64, text string) Update {
	return Update{
		Kind:     KindMessage,
		SenderID: chatID,
		Message:  &Message{ChatID: chatID, Content: ContentText, Text: text},
	}
}
