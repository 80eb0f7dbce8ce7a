// Package menu holds the bot's résumé menu: the trigger tables that map
// inbound text to a menu entry, and the canned response for every entry.
// Everything here is pure data and functions; sending is done elsewhere.
package menu

// ══════════════════════════════════════════════════════════════════════════════
// MARKUP DESCRIPTORS
// Library-agnostic keyboards. The Telegram adapter converts these to the
// client library's reply markup types.
// ══════════════════════════════════════════════════════════════════════════════

// MarkupKind selects which kind of keyboard a response carries.
type MarkupKind int

const (
	MarkupNone MarkupKind = iota
	MarkupRemoveKeyboard
	MarkupReplyKeyboard
	MarkupInlineKeyboard
	MarkupContactLocationRequest
)

func (k MarkupKind) String() string {
	switch k {
	case MarkupRemoveKeyboard:
		return "RemoveKeyboard"
	case MarkupReplyKeyboard:
		return "ReplyKeyboard"
	case MarkupInlineKeyboard:
		return "InlineKeyboard"
	case MarkupContactLocationRequest:
		return "ContactLocationRequest"
	default:
		return "None"
	}
}

// Button is one keyboard button. CallbackData is only meaningful on inline
// keyboards; the Request flags only on contact/location keyboards.
type Button struct {
	Text            string
	CallbackData    string
	RequestContact  bool
	RequestLocation bool
}

// Markup is a keyboard descriptor attached to an outbound message.
type Markup struct {
	Kind   MarkupKind
	Rows   [][]Button
	Resize bool
}

// IsZero reports whether the markup attaches nothing.
func (m Markup) IsZero() bool {
	return m.Kind == MarkupNone
}

// Labels returns the button texts row by row.
func (m Markup) Labels() [][]string {
	out := make([][]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		labels := make([]string, 0, len(row))
		for _, b := range row {
			labels = append(labels, b.Text)
		}
		out = append(out, labels)
	}
	return out
}

// AddRow appends a row of buttons.
func (m Markup) AddRow(buttons ...Button) Markup {
	rows := make([][]Button, len(m.Rows), len(m.Rows)+1)
	copy(rows, m.Rows)
	m.Rows = append(rows, buttons)
	return m
}

// NoMarkup attaches nothing.
func NoMarkup() Markup {
	return Markup{Kind: MarkupNone}
}

// RemoveKeyboard clears whatever custom keyboard the client shows.
func RemoveKeyboard() Markup {
	return Markup{Kind: MarkupRemoveKeyboard}
}

// ReplyKeyboard builds a reply keyboard with one label per button.
func ReplyKeyboard(resize bool, rows ...[]string) Markup {
	m := Markup{Kind: MarkupReplyKeyboard, Resize: resize}
	for _, row := range rows {
		buttons := make([]Button, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, Button{Text: label})
		}
		m = m.AddRow(buttons...)
	}
	return m
}

// InlineKeyboard starts an empty inline keyboard; add rows with AddRow.
func InlineKeyboard() Markup {
	return Markup{Kind: MarkupInlineKeyboard}
}

// CallbackButton creates an inline button carrying opaque callback data.
func CallbackButton(text, data string) Button {
	return Button{Text: text, CallbackData: data}
}

// ContactLocationRequest builds the single-row keyboard asking the user to
// share their location and contact.
func ContactLocationRequest(locationLabel, contactLabel string) Markup {
	return Markup{Kind: MarkupContactLocationRequest}.AddRow(
		Button{Text: locationLabel, RequestLocation: true},
		Button{Text: contactLabel, RequestContact: true},
	)
}
