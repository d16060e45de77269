package dashboard

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/ui/layout"
)

// Screen is one page of the dashboard.
type Screen interface {
	// Init returns an initial command when the screen is pushed.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string

	// KeyHints returns the footer hints for this screen.
	KeyHints() []layout.KeyHint
}

// PushScreenMsg asks the dashboard to open a screen on top of the current one.
type PushScreenMsg struct {
	Screen Screen
}

// PopScreenMsg asks the dashboard to close the current screen.
type PopScreenMsg struct{}

func pop() tea.Msg { return PopScreenMsg{} }

// stack holds the open screens; the bottom one is never popped.
type stack struct {
	screens []Screen
}

func newStack(root Screen) *stack {
	return &stack{screens: []Screen{root}}
}

func (s *stack) push(sc Screen) tea.Cmd {
	s.screens = append(s.screens, sc)
	return sc.Init()
}

func (s *stack) pop() {
	if len(s.screens) > 1 {
		s.screens = s.screens[:len(s.screens)-1]
	}
}

func (s *stack) active() Screen { return s.screens[len(s.screens)-1] }

func (s *stack) depth() int { return len(s.screens) }

// update forwards msg to the active screen, handling navigation messages.
func (s *stack) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return s.push(msg.Screen)
	case PopScreenMsg:
		s.pop()
		return nil
	}
	updated, cmd := s.active().Update(msg)
	s.screens[len(s.screens)-1] = updated
	return cmd
}

// broadcast delivers msg to every open screen, bottom first.
func (s *stack) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s.screens))
	for i, sc := range s.screens {
		updated, cmd := sc.Update(msg)
		s.screens[i] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
