package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/ui/theme"
)

func TestFilled(t *testing.T) {
	tests := []struct {
		percent float64
		n, want int
	}{
		{0, 10, 0},
		{50, 10, 5},
		{100, 10, 10},
		{150, 10, 10},
		{-5, 10, 0},
		{33.3, 30, 9},
	}
	for _, tt := range tests {
		if got := Filled(tt.percent, tt.n); got != tt.want {
			t.Errorf("Filled(%v, %d) = %d, want %d", tt.percent, tt.n, got, tt.want)
		}
	}
}

func TestProgressBarPlain(t *testing.T) {
	bar := NewProgressBar(theme.Plain(), "", 50, 26)
	got := bar.View()
	want := strings.Repeat("#", 10) + strings.Repeat(".", 10) + "  50%"
	if got != want {
		t.Errorf("View() = %q, want %q", got, want)
	}
}

func TestProgressBarClampsLabelPercent(t *testing.T) {
	bar := NewProgressBar(theme.Plain(), "Math", 140, 40)
	got := bar.View()
	if !strings.HasPrefix(got, "Math  ") || !strings.HasSuffix(got, "100%") {
		t.Errorf("View() = %q", got)
	}
	if strings.Contains(got, ".") {
		t.Errorf("over-full bar has empty cells: %q", got)
	}
}

func TestTabsNavigation(t *testing.T) {
	tabs := NewTabs(theme.Plain(), "Overview", "Weekly", "Monthly")

	tabs = tabs.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if tabs.Active() != "Weekly" {
		t.Errorf("after right: %q", tabs.Active())
	}
	tabs = tabs.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	tabs = tabs.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if tabs.Active() != "Monthly" {
		t.Errorf("left should wrap: %q", tabs.Active())
	}
	tabs = tabs.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if tabs.Active() != "Overview" {
		t.Errorf("after 1: %q", tabs.Active())
	}
	tabs = tabs.Update(tea.KeyPressMsg{Code: '9', Text: "9"})
	if tabs.Active() != "Overview" {
		t.Errorf("out-of-range digit moved selection: %q", tabs.Active())
	}
	if !strings.Contains(tabs.View(), "[Overview]") {
		t.Errorf("plain view should bracket the active tab: %q", tabs.View())
	}
}

func TestTextInputTrims(t *testing.T) {
	in := NewTextInput("ask", 20)
	in.Model.SetValue("  what is torque?  ")
	if in.Value() != "what is torque?" {
		t.Errorf("Value() = %q", in.Value())
	}
	in.Reset()
	if in.Value() != "" {
		t.Errorf("after Reset: %q", in.Value())
	}
}
