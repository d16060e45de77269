package dashboard

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/tutor"
	"github.com/abhisek/studypulse/internal/ui/components"
	"github.com/abhisek/studypulse/internal/ui/layout"
	"github.com/abhisek/studypulse/internal/ui/theme"
	"github.com/abhisek/studypulse/internal/ui/views"
)

// GeneralSubject is offered when the user has no subjects yet.
const GeneralSubject = "General"

const questionLimit = 500

// answerMsg carries the tutor's reply to the ask screen.
type answerMsg struct {
	answer *tutor.Answer
	err    error
}

// askScreen sends one question at a time to the tutor.
type askScreen struct {
	st       theme.Styles
	tutor    Asker
	userID   string
	subjects []string
	subject  int
	input    components.TextInput
	pending  bool
	answer   *tutor.Answer
	err      error
}

var _ Screen = (*askScreen)(nil)

func newAsk(st theme.Styles, t Asker, userID string, subjects []string) *askScreen {
	if len(subjects) == 0 {
		subjects = []string{GeneralSubject}
	}
	return &askScreen{
		st:       st,
		tutor:    t,
		userID:   userID,
		subjects: subjects,
		input:    components.NewTextInput("Type a question and press Enter", questionLimit),
	}
}

func (a *askScreen) Init() tea.Cmd { return a.input.Init() }

func (a *askScreen) Title() string { return "Ask the tutor" }

func (a *askScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Subject"},
		{Key: "Enter", Description: "Ask"},
	}
}

// Subject returns the selected subject.
func (a *askScreen) Subject() string { return a.subjects[a.subject] }

func (a *askScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		a.pending = false
		a.answer, a.err = msg.answer, msg.err
		if msg.answer != nil {
			// A recorded tutor session changes the reports behind this screen.
			return a, refresh
		}
		return a, nil

	case tea.KeyMsg:
		n := len(a.subjects)
		switch msg.String() {
		case "up":
			a.subject = (a.subject - 1 + n) % n
			return a, nil
		case "down":
			a.subject = (a.subject + 1) % n
			return a, nil
		case "enter":
			q := a.input.Value()
			if a.pending || q == "" {
				return a, nil
			}
			a.pending = true
			a.answer, a.err = nil, nil
			a.input.Reset()
			return a, a.ask(a.Subject(), q)
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *askScreen) ask(subject, question string) tea.Cmd {
	t, user := a.tutor, a.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		ans, err := t.Ask(ctx, user, subject, question)
		return answerMsg{answer: ans, err: err}
	}
}

func (a *askScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(a.st.Heading.Render("Subject: "))
	b.WriteString(a.st.Value.Render(a.Subject()))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	if a.pending {
		b.WriteString(a.st.Hint.Render("Thinking..."))
		return b.String()
	}
	if a.answer != nil {
		b.WriteString(a.st.Body.Width(max(width-4, 20)).Render(a.answer.Text))
		b.WriteString("\n")
		if len(a.answer.FollowUps) > 0 {
			b.WriteString("\n" + a.st.Heading.Render("You could also ask") + "\n")
			for _, f := range a.answer.FollowUps {
				b.WriteString("  - " + f + "\n")
			}
		}
	}
	if a.err != nil {
		b.WriteString("\n" + a.st.Bad.Render(errorText(a.err)))
	}
	return b.String()
}

func errorText(err error) string {
	switch {
	case store.KindOf(err) == store.KindSchemaMissing:
		return views.SetupMessage
	case errors.Is(err, context.DeadlineExceeded):
		return "the tutor took too long to answer"
	default:
		return err.Error()
	}
}
