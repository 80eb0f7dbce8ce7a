package menu

import (
	"fmt"
	"strings"
	"unicode"
)

// Trigger identifies a menu entry. Every routed text resolves to exactly one.
type Trigger int

const (
	TriggerUsage Trigger = iota
	TriggerHello
	TriggerPhoto
	TriggerRequest
	TriggerInline
	TriggerRemove
	TriggerEducation
	TriggerWork
	TriggerSkills
	TriggerBack
	TriggerWeb
	TriggerDesktop
)

var triggerNames = [...]string{
	TriggerUsage:     "usage",
	TriggerHello:     "hello",
	TriggerPhoto:     "photo",
	TriggerRequest:   "request",
	TriggerInline:    "inline",
	TriggerRemove:    "remove",
	TriggerEducation: "education",
	TriggerWork:      "work",
	TriggerSkills:    "skills",
	TriggerBack:      "back",
	TriggerWeb:       "web",
	TriggerDesktop:   "desktop",
}

func (t Trigger) String() string {
	if t >= 0 && int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

// Entry binds a literal key to a trigger.
type Entry struct {
	Key     string
	Trigger Trigger
}

// Command keys, matched against the first token of a message.
const (
	CommandHello   = "/Hello"
	CommandPhoto   = "/Photo"
	CommandRequest = "/request"
	CommandInline  = "/inline"
	CommandRemove  = "/remove"
)

// Menu labels, matched against the whole message text.
const (
	LabelEducation = "Образование"
	LabelWork      = "Работа"
	LabelSkills    = "Навыки"
	LabelPortfolio = "Потрфолио"
	LabelBack      = "<-back"
	LabelWeb       = "Веб"
	LabelDesktop   = "Десктоп"
)

var baseCommands = []Entry{
	{CommandHello, TriggerHello},
	{CommandPhoto, TriggerPhoto},
	{CommandRequest, TriggerRequest},
}

var baseLabels = []Entry{
	{LabelEducation, TriggerEducation},
	{LabelWork, TriggerWork},
	{LabelSkills, TriggerSkills},
	{LabelBack, TriggerBack},
	{LabelWeb, TriggerWeb},
	{LabelDesktop, TriggerDesktop},
}

// Options switches on the optional commands.
type Options struct {
	InlineMenu     bool
	RemoveKeyboard bool
}

// Router resolves message text to a Trigger. It is immutable after
// construction and safe for concurrent use.
type Router struct {
	opts     Options
	commands []Entry
	labels   []Entry
}

// NewRouter builds a router with the base tables plus any enabled options.
func NewRouter(opts Options) *Router {
	commands := make([]Entry, 0, len(baseCommands)+2)
	commands = append(commands, baseCommands...)
	if opts.InlineMenu {
		commands = append(commands, Entry{CommandInline, TriggerInline})
	}
	if opts.RemoveKeyboard {
		commands = append(commands, Entry{CommandRemove, TriggerRemove})
	}

	labels := make([]Entry, len(baseLabels))
	copy(labels, baseLabels)

	return &Router{opts: opts, commands: commands, labels: labels}
}

var defaultRouter = NewRouter(Options{})

// Route resolves text using the base tables only.
func Route(text string) Trigger {
	return defaultRouter.Route(text)
}

// Route matches the first whitespace-delimited token against the command
// table, then the full text against the label table. Matching is exact and
// case-sensitive; anything else resolves to TriggerUsage.
func (r *Router) Route(text string) Trigger {
	token := firstToken(text)
	for _, e := range r.commands {
		if e.Key == token {
			return e.Trigger
		}
	}
	for _, e := range r.labels {
		if e.Key == text {
			return e.Trigger
		}
	}
	return TriggerUsage
}

// Commands returns a copy of the command table in match order.
func (r *Router) Commands() []Entry {
	out := make([]Entry, len(r.commands))
	copy(out, r.commands)
	return out
}

// Labels returns a copy of the label table in match order.
func (r *Router) Labels() []Entry {
	out := make([]Entry, len(r.labels))
	copy(out, r.labels)
	return out
}

// Options returns the options the router was built with.
func (r *Router) Options() Options {
	return r.opts
}

func firstToken(text string) string {
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		return text[:i]
	}
	return text
}
