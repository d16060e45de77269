package dashboard

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/ui/components"
	"github.com/abhisek/studypulse/internal/ui/layout"
	"github.com/abhisek/studypulse/internal/ui/theme"
	"github.com/abhisek/studypulse/internal/ui/views"
)

// Tab labels, in display order.
const (
	TabOverview = "Overview"
	TabWeekly   = "Weekly"
	TabMonthly  = "Monthly"
	TabInsights = "Insights"
)

// reportsScreen shows the progress reports, one tab at a time.
type reportsScreen struct {
	st     theme.Styles
	tabs   components.Tabs
	snap   progress.Snapshot
	loaded bool
}

var _ Screen = (*reportsScreen)(nil)

func newReports(st theme.Styles) *reportsScreen {
	return &reportsScreen{
		st:   st,
		tabs: components.NewTabs(st, TabOverview, TabWeekly, TabMonthly, TabInsights),
	}
}

func (r *reportsScreen) Init() tea.Cmd { return nil }

func (r *reportsScreen) Title() string { return "Progress" }

func (r *reportsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "←→", Description: "Switch tab"}}
}

func (r *reportsScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		r.snap = msg.snap
		r.loaded = true
	case tea.KeyMsg:
		r.tabs = r.tabs.Update(msg)
	}
	return r, nil
}

func (r *reportsScreen) View(width, height int) string {
	out := r.tabs.View() + "\n\n"
	if !r.loaded {
		return out + r.st.Hint.Render("Loading...")
	}
	if r.snap.SetupIncomplete() {
		return out + r.st.Bad.Render(views.SetupMessage)
	}

	switch r.tabs.Active() {
	case TabWeekly:
		out += views.Weekly(r.st, r.snap.Weekly, width)
	case TabMonthly:
		out += views.Monthly(r.st, r.snap.Monthly, width)
	case TabInsights:
		out += views.Insights(r.st, r.snap.Insights)
	default:
		out += views.Overview(r.st, r.snap, width)
	}
	return out
}
