package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/studypulse/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0-100 percentage.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	Styles      theme.Styles
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(styles theme.Styles, label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: true,
		Width:       width,
		Styles:      styles,
	}
}

// Filled returns how many of n cells a percentage fills, clamped to [0, n].
func Filled(percent float64, n int) int {
	f := int(float64(n) * percent / 100)
	return min(max(f, 0), n)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	labelWidth := 0
	if p.Label != "" {
		b.WriteString(p.Styles.Body.Render(p.Label))
		b.WriteString("  ")
		labelWidth = len([]rune(p.Label)) + 2
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}
	barWidth := max(p.Width-labelWidth-percentWidth, 4)

	filled := Filled(p.Percent, barWidth)
	b.WriteString(p.Styles.Filled.Render(strings.Repeat(p.Styles.BarFill, filled)))
	b.WriteString(p.Styles.Empty.Render(strings.Repeat(p.Styles.BarEmpty, barWidth-filled)))

	if p.ShowPercent {
		b.WriteString(p.Styles.Hint.Render(fmt.Sprintf("  %d%%", int(min(max(p.Percent, 0), 100)))))
	}
	return b.String()
}
