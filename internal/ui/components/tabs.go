package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/ui/theme"
)

// Tabs is a horizontal tab strip. Left/right (or h/l, tab/shift+tab)
// move the selection and wrap around; number keys jump directly.
type Tabs struct {
	Labels   []string
	Selected int
	Styles   theme.Styles
}

// NewTabs creates a tab strip with the first tab selected.
func NewTabs(styles theme.Styles, labels ...string) Tabs {
	return Tabs{Labels: labels, Styles: styles}
}

// Update handles keyboard navigation.
func (t Tabs) Update(msg tea.Msg) Tabs {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(t.Labels) == 0 {
		return t
	}

	n := len(t.Labels)
	switch key := kmsg.String(); key {
	case "right", "l", "tab":
		t.Selected = (t.Selected + 1) % n
	case "left", "h", "shift+tab":
		t.Selected = (t.Selected - 1 + n) % n
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < n {
			t.Selected = int(key[0] - '1')
		}
	}
	return t
}

// Active returns the selected label.
func (t Tabs) Active() string {
	if t.Selected < 0 || t.Selected >= len(t.Labels) {
		return ""
	}
	return t.Labels[t.Selected]
}

// View renders the tab strip.
func (t Tabs) View() string {
	parts := make([]string, 0, len(t.Labels))
	for i, label := range t.Labels {
		if i == t.Selected {
			if !t.Styles.Colored {
				label = "[" + label + "]"
			}
			parts = append(parts, t.Styles.TabOn.Render(label))
		} else {
			parts = append(parts, t.Styles.TabOff.Render(label))
		}
	}
	return strings.Join(parts, " ")
}
