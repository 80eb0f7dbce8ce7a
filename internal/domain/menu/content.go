package menu

import "strings"

// ChatAction is a presence signal sent before a slow response.
type ChatAction string

const (
	ChatActionNone        ChatAction = ""
	ChatActionTyping      ChatAction = "typing"
	ChatActionUploadPhoto ChatAction = "upload_photo"
)

// Photo describes an image response. The asset itself is resolved by the
// caller; the menu only knows the caption.
type Photo struct {
	Caption string
}

// Response is what a trigger produces: an optional chat action, then either
// a text message with markup or a photo.
type Response struct {
	Trigger Trigger
	Action  ChatAction
	Text    string
	Markup  Markup
	Photo   *Photo

	// Delayed marks responses that wait a configured latency between the
	// chat action and the send.
	Delayed bool
}

// IsPhoto reports whether the response sends a photo instead of text.
func (r Response) IsPhoto() bool {
	return r.Photo != nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CANNED CONTENT
// ══════════════════════════════════════════════════════════════════════════════

const (
	TextChoose        = "Выбери"
	TextChooseInline  = "Choose"
	TextRequest       = "Who or Where are you?"
	TextRemoving      = "Removing keyboard"
	TextDesktop       = "Потом :-) "
	CaptionPhoto      = "Nice Picture"
	LabelShareLocate  = "Location"
	LabelShareContact = "Contact"
)

// TextEducation is the education biography.
const TextEducation = "В школе всегда легко давалась математика, участвовал и побеждал в олимпиадах, но с языками дела были не очень).\n" +
	"Поступил и закончил ПГУ(Полоцкий Гос..). Учился на радиотехническом факультете. " +
	"На третьем курсе начал учиться по еще одной специальности, теперь я инженер-электроник-программист и экономист-менеджер)"

// TextWork is the work history.
const TextWork = "Распредилися в Минск на предприятие \"Молочный гостинец\" в должности инженер-электроник. " +
	"За время отработки достиг хороших результатов:\n" +
	"занимался модернизацией,\n" +
	"создавал новые установки,\n" +
	"обучал персонал(который до этого обучал меня;-)),\n" +
	"В данный момент закрываю несколько позиций. Работа на заводе научила меня брать ответсвеность когда все бегут от нее. \n" +
	"И так же работать с множеством документаций на разных языках.(Англ. Немец. Итальянс.)"

// TextWeb points at the portfolio site.
const TextWeb = "Пожалуйста посмотрите мой сайт. Я каждый месяц плачу за его хостинг, чтобы его могли посмотреть в моем резюме, но никто не смотрит\n" +
	"https://bukinichweb.azurewebsites.net\n" +
	"При первом посещении будет долго грузить так как им никто не пользуется) Но все последующие посещения будут открываться быстро."

// MainMenu is the 2×2 top-level keyboard.
func MainMenu() Markup {
	return ReplyKeyboard(true,
		[]string{LabelEducation, LabelSkills},
		[]string{LabelWork, LabelPortfolio},
	)
}

// SkillsMenu is the skills sub-menu keyboard.
func SkillsMenu() Markup {
	return ReplyKeyboard(true,
		[]string{LabelBack},
		[]string{LabelWeb, LabelDesktop},
	)
}

// InlineMenu is the callback-driven variant of the main menu.
func InlineMenu() Markup {
	return InlineKeyboard().
		AddRow(CallbackButton(LabelEducation, "11"), CallbackButton(LabelSkills, "12")).
		AddRow(CallbackButton(LabelWork, "21"), CallbackButton(LabelPortfolio, "22"))
}

// Usage builds the help text listing the commands the router accepts.
func (r *Router) Usage() string {
	var b strings.Builder
	b.WriteString("Используй:\n")
	if r.opts.InlineMenu {
		b.WriteString("/inline   - send inline keyboard\n")
	}
	b.WriteString("/Hello - рассказать о себе\n")
	if r.opts.RemoveKeyboard {
		b.WriteString("/remove   - remove custom keyboard\n")
	}
	b.WriteString("/Photo    - отправить фото\n")
	b.WriteString("/request  - локация и контакт\n")
	return b.String()
}

// Respond returns the canned response for a trigger. Triggers for disabled
// options, and unknown triggers, get the usage response.
func (r *Router) Respond(t Trigger) Response {
	switch t {
	case TriggerHello, TriggerBack:
		return Response{Trigger: t, Text: TextChoose, Markup: MainMenu()}
	case TriggerPhoto:
		return Response{Trigger: t, Action: ChatActionUploadPhoto, Photo: &Photo{Caption: CaptionPhoto}}
	case TriggerRequest:
		return Response{Trigger: t, Text: TextRequest, Markup: ContactLocationRequest(LabelShareLocate, LabelShareContact)}
	case TriggerInline:
		if r.opts.InlineMenu {
			return Response{Trigger: t, Action: ChatActionTyping, Delayed: true, Text: TextChooseInline, Markup: InlineMenu()}
		}
	case TriggerRemove:
		if r.opts.RemoveKeyboard {
			return Response{Trigger: t, Text: TextRemoving, Markup: RemoveKeyboard()}
		}
	case TriggerEducation:
		return Response{Trigger: t, Text: TextEducation, Markup: NoMarkup()}
	case TriggerWork:
		return Response{Trigger: t, Text: TextWork, Markup: NoMarkup()}
	case TriggerSkills:
		return Response{Trigger: t, Text: TextChoose, Markup: SkillsMenu()}
	case TriggerWeb:
		return Response{Trigger: t, Text: TextWeb, Markup: SkillsMenu()}
	case TriggerDesktop:
		return Response{Trigger: t, Text: TextDesktop, Markup: SkillsMenu()}
	}
	return Response{Trigger: TriggerUsage, Text: r.Usage(), Markup: RemoveKeyboard()}
}

// Resolve routes text and returns its response in one step.
func (r *Router) Resolve(text string) Response {
	return r.Respond(r.Route(text))
}
