// Package dashboard is the interactive terminal view of a user's progress.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/tutor"
	"github.com/abhisek/studypulse/internal/ui/layout"
	"github.com/abhisek/studypulse/internal/ui/theme"
)

const (
	loadTimeout = 15 * time.Second
	askTimeout  = 90 * time.Second
)

// Source reads every report for a user. *progress.Service satisfies it.
type Source interface {
	Snapshot(ctx context.Context, userID string) progress.Snapshot
}

// Asker answers tutor questions. *tutor.Tutor satisfies it.
type Asker interface {
	Ask(ctx context.Context, userID, subject, question string) (*tutor.Answer, error)
}

// Deps are the collaborators the dashboard reads from.
type Deps struct {
	Source Source
	// Tutor is optional; without it the ask screen is disabled.
	Tutor  Asker
	UserID string
	Styles theme.Styles
}

// snapshotMsg carries a freshly read snapshot.
type snapshotMsg struct {
	snap progress.Snapshot
}

// refreshMsg asks the dashboard to re-read the snapshot.
type refreshMsg struct{}

func refresh() tea.Msg { return refreshMsg{} }

// Model is the root Bubble Tea model.
type Model struct {
	deps   Deps
	stack  *stack
	snap   progress.Snapshot
	width  int
	height int
}

// New creates the dashboard with the reports screen open.
func New(deps Deps) Model {
	return Model{
		deps:  deps,
		stack: newStack(newReports(deps.Styles)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	src, user := m.deps.Source, m.deps.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return snapshotMsg{snap: src.Snapshot(ctx, user)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.snap = msg.snap
		return m, m.stack.broadcast(msg)

	case refreshMsg:
		return m, m.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.stack.depth() > 1 {
				return m, pop
			}
			return m, nil
		}
		if m.stack.depth() == 1 {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "r":
				return m, m.load()
			case "a":
				if m.deps.Tutor == nil {
					return m, nil
				}
				ask := newAsk(m.deps.Styles, m.deps.Tutor, m.deps.UserID, subjectNames(m.snap))
				return m, func() tea.Msg { return PushScreenMsg{Screen: ask} }
			}
		}
	}

	return m, m.stack.update(msg)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current size.
func (m Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.stack.active()
	header := layout.RenderHeader(layout.HeaderInfo{
		Title:         active.Title(),
		User:          m.deps.UserID,
		StreakDays:    m.snap.Streak.Value.Days,
		WeeklyMinutes: m.snap.Weekly.Value.TotalStudyTime,
	}, m.width)

	hints := active.KeyHints()
	if m.stack.depth() == 1 {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Refresh"})
		if m.deps.Tutor != nil {
			hints = append(hints, layout.KeyHint{Key: "a", Description: "Ask tutor"})
		}
		hints = append(hints, layout.KeyHint{Key: "q", Description: "Quit"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	footer := layout.RenderFooter(hints, m.width)

	h := layout.ContentHeight(header, footer, m.height)
	content := clip(active.View(m.width, h), h)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// clip keeps the first n lines of s.
func clip(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

func subjectNames(snap progress.Snapshot) []string {
	names := make([]string, 0, len(snap.Subjects.Value))
	for _, sp := range snap.Subjects.Value {
		names = append(names, sp.SubjectName)
	}
	return names
}

// Run starts the dashboard and blocks until the user quits.
func Run(deps Deps) error {
	p := tea.NewProgram(New(deps))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running dashboard:", err)
		return err
	}
	return nil
}
