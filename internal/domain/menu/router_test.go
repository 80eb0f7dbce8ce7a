package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_CommandTable(t *testing.T) {
	tests := []struct {
		text string
		want Trigger
	}{
		{"/Hello", TriggerHello},
		{"/Hello extra words", TriggerHello},
		{"/Hello\tagain", TriggerHello},
		{"/Photo", TriggerPhoto},
		{"/Photo please", TriggerPhoto},
		{"/request", TriggerRequest},
		{"/request  me", TriggerRequest},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.text))
		})
	}
}

func TestRoute_LabelTable(t *testing.T) {
	tests := []struct {
		text string
		want Trigger
	}{
		{LabelEducation, TriggerEducation},
		{LabelWork, TriggerWork},
		{LabelSkills, TriggerSkills},
		{LabelBack, TriggerBack},
		{LabelWeb, TriggerWeb},
		{LabelDesktop, TriggerDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.text))
		})
	}
}

func TestRoute_UnmatchedIsUsage(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"hello",
		"/hello",
		"/HELLO",
		"/Hell",
		"/Helloo",
		" /Hello",
		"/inline",
		"/remove",
		LabelPortfolio,
		LabelEducation + " ",
		"Навыки please",
		"Веб Десктоп",
		"random text",
	}

	r := NewRouter(Options{})
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, TriggerUsage, r.Route(in))

			resp := r.Resolve(in)
			assert.Equal(t, TriggerUsage, resp.Trigger)
			assert.Equal(t, MarkupRemoveKeyboard, resp.Markup.Kind)
			assert.Equal(t, r.Usage(), resp.Text)
		})
	}
}

func TestRoute_TrailingTextIdentical(t *testing.T) {
	r := NewRouter(Options{})
	for _, e := range r.Commands() {
		assert.Equal(t, r.Resolve(e.Key), r.Resolve(e.Key+" trailing words"), e.Key)
	}
}

func TestRouter_OptionalCommands(t *testing.T) {
	r := NewRouter(Options{InlineMenu: true, RemoveKeyboard: true})

	assert.Equal(t, TriggerInline, r.Route("/inline"))
	assert.Equal(t, TriggerRemove, r.Route("/remove now"))

	inline := r.Respond(TriggerInline)
	assert.Equal(t, ChatActionTyping, inline.Action)
	assert.True(t, inline.Delayed)
	assert.Equal(t, TextChooseInline, inline.Text)
	assert.Equal(t, MarkupInlineKeyboard, inline.Markup.Kind)
	assert.Equal(t, "22", inline.Markup.Rows[1][1].CallbackData)

	remove := r.Respond(TriggerRemove)
	assert.Equal(t, TextRemoving, remove.Text)
	assert.Equal(t, MarkupRemoveKeyboard, remove.Markup.Kind)

	assert.Contains(t, r.Usage(), "/inline   - send inline keyboard\n")
	assert.Contains(t, r.Usage(), "/remove   - remove custom keyboard\n")
}

func TestRouter_DisabledOptionRespondsWithUsage(t *testing.T) {
	r := NewRouter(Options{})

	assert.Equal(t, TriggerUsage, r.Respond(TriggerInline).Trigger)
	assert.Equal(t, TriggerUsage, r.Respond(TriggerRemove).Trigger)
	assert.Equal(t, TriggerUsage, r.Respond(Trigger(99)).Trigger)
	assert.NotContains(t, r.Usage(), "/inline")
}

func TestRouter_TablesAreDisjointAndCopied(t *testing.T) {
	r := NewRouter(Options{InlineMenu: true, RemoveKeyboard: true})

	seen := map[string]bool{}
	for _, e := range append(r.Commands(), r.Labels()...) {
		assert.False(t, seen[e.Key], "duplicate key %q", e.Key)
		seen[e.Key] = true
	}

	cmds := r.Commands()
	cmds[0].Trigger = TriggerUsage
	assert.Equal(t, TriggerHello, r.Route(CommandHello))
}

func TestRespond_Hello(t *testing.T) {
	resp := NewRouter(Options{}).Resolve("/Hello")

	assert.Equal(t, TextChoose, resp.Text)
	assert.Equal(t, MarkupReplyKeyboard, resp.Markup.Kind)
	assert.True(t, resp.Markup.Resize)
	assert.Equal(t, [][]string{
		{LabelEducation, LabelSkills},
		{LabelWork, LabelPortfolio},
	}, resp.Markup.Labels())
	assert.Equal(t, resp.Markup, NewRouter(Options{}).Resolve(LabelBack).Markup)
}

func TestRespond_Photo(t *testing.T) {
	resp := NewRouter(Options{}).Resolve("/Photo")

	require.True(t, resp.IsPhoto())
	assert.Equal(t, ChatActionUploadPhoto, resp.Action)
	assert.Equal(t, CaptionPhoto, resp.Photo.Caption)
}

func TestRespond_Request(t *testing.T) {
	resp := NewRouter(Options{}).Resolve("/request")

	assert.Equal(t, TextRequest, resp.Text)
	assert.Equal(t, MarkupContactLocationRequest, resp.Markup.Kind)
	assert.False(t, resp.Markup.Resize)
	require.Len(t, resp.Markup.Rows, 1)
	require.Len(t, resp.Markup.Rows[0], 2)
	assert.True(t, resp.Markup.Rows[0][0].RequestLocation)
	assert.True(t, resp.Markup.Rows[0][1].RequestContact)
}

func TestRespond_SkillsSubMenu(t *testing.T) {
	r := NewRouter(Options{})
	want := [][]string{{LabelBack}, {LabelWeb, LabelDesktop}}

	for _, label := range []string{LabelSkills, LabelWeb, LabelDesktop} {
		resp := r.Resolve(label)
		assert.Equal(t, want, resp.Markup.Labels(), label)
		assert.True(t, resp.Markup.Resize, label)
	}
	assert.Equal(t, TextDesktop, r.Resolve(LabelDesktop).Text)
	assert.Contains(t, r.Resolve(LabelWeb).Text, "https://bukinichweb.azurewebsites.net")
}

func TestRespond_Biographies(t *testing.T) {
	r := NewRouter(Options{})

	edu := r.Resolve(LabelEducation)
	assert.Equal(t, TextEducation, edu.Text)
	assert.True(t, edu.Markup.IsZero())

	work := r.Resolve(LabelWork)
	assert.Equal(t, TextWork, work.Text)
	assert.True(t, work.Markup.IsZero())
}

func TestMarkup_AddRowDoesNotAlias(t *testing.T) {
	base := InlineKeyboard().AddRow(CallbackButton("a", "1"))
	left := base.AddRow(CallbackButton("b", "2"))
	right := base.AddRow(CallbackButton("c", "3"))

	assert.Equal(t, "b", left.Rows[1][0].Text)
	assert.Equal(t, "c", right.Rows[1][0].Text)
	assert.Len(t, base.Rows, 1)
}
