package theme

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

// Color palette, calm study colors on a dark background.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Styles is the set of styles a renderer draws with. The plain set
// renders text unchanged so output stays readable when piped.
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style
	Value    lipgloss.Style
	Good     lipgloss.Style
	Warn     lipgloss.Style
	Bad      lipgloss.Style
	TabOn    lipgloss.Style
	TabOff   lipgloss.Style
	Card     lipgloss.Style
	Filled   lipgloss.Style
	Empty    lipgloss.Style
	Colored  bool
	BarFill  string
	BarEmpty string
}

// Color returns the styled set used on terminals.
func Color() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary),
		Body: lipgloss.NewStyle().
			Foreground(Text),
		Hint: lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true),
		Value: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),
		Good: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),
		Warn: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),
		Bad: lipgloss.NewStyle().
			Foreground(Error).
			Bold(true),
		TabOn: lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2),
		TabOff: lipgloss.NewStyle().
			Foreground(TextDim).
			Padding(0, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		Filled: lipgloss.NewStyle().
			Background(Secondary),
		Empty: lipgloss.NewStyle().
			Background(Border),
		Colored:  true,
		BarFill:  " ",
		BarEmpty: " ",
	}
}

// Plain returns styles that add no escape sequences.
func Plain() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Title:    s,
		Heading:  s,
		Body:     s,
		Hint:     s,
		Value:    s,
		Good:     s,
		Warn:     s,
		Bad:      s,
		TabOn:    s.Padding(0, 1),
		TabOff:   s.Padding(0, 1),
		Card:     s,
		Filled:   s,
		Empty:    s,
		BarFill:  "#",
		BarEmpty: ".",
	}
}

// For picks Color when w is a terminal and NO_COLOR is unset.
func For(w io.Writer) Styles {
	if UseColor(w) {
		return Color()
	}
	return Plain()
}

// UseColor reports whether w is a terminal that should receive styling.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
