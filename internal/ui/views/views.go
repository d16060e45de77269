// Package views renders progress reports as text blocks. The same
// renderers serve the CLI (plain or colored) and the dashboard tabs.
package views

import (
	"fmt"
	"strings"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/ui/components"
	"github.com/abhisek/studypulse/internal/ui/theme"
)

// SetupMessage is shown when the tables have not been created yet.
const SetupMessage = "setup incomplete: run studypulse migrate"

const labelWidth = 24

type block struct {
	st theme.Styles
	b  strings.Builder
}

func (b *block) heading(s string) {
	if b.b.Len() > 0 {
		b.b.WriteString("\n")
	}
	b.b.WriteString(b.st.Heading.Render(s))
	b.b.WriteString("\n")
}

func (b *block) line(label string, value any) {
	fmt.Fprintf(&b.b, "  %-*s %s\n", labelWidth, label, b.st.Value.Render(fmt.Sprint(value)))
}

func (b *block) list(label string, items []string) {
	if len(items) == 0 {
		b.line(label, "-")
		return
	}
	b.line(label, items[0])
	for _, it := range items[1:] {
		fmt.Fprintf(&b.b, "  %-*s %s\n", labelWidth, "", b.st.Value.Render(it))
	}
}

func (b *block) raw(s string) {
	b.b.WriteString(s)
	b.b.WriteString("\n")
}

// notice renders the degraded marker for an outcome, if any.
func notice[T any](b *block, o progress.Outcome[T]) {
	switch {
	case o.SetupIncomplete():
		b.raw(b.st.Bad.Render(SetupMessage))
	case o.Degraded:
		b.raw(b.st.Warn.Render("showing defaults: progress store unavailable"))
	}
}

// Stats renders the aggregate counters and streak.
func Stats(st theme.Styles, stats progress.Outcome[progress.UserProgressStats], streak progress.Outcome[progress.StreakReport]) string {
	b := &block{st: st}
	b.heading("Progress")
	notice(b, stats)
	s := stats.Value
	b.line("Total study time", minutes(s.TotalStudyTimeMinutes))
	b.line("This week", minutes(s.WeeklyStudyTime))
	b.line("This month", minutes(s.MonthlyStudyTime))
	b.line("Lessons completed", s.CompletedLessons)
	b.line("Tests taken", s.TotalTestsTaken)
	b.line("Average test score", s.AverageTestScore)
	b.line("AI tutor sessions", s.AISessionsCount)
	b.b.WriteString(Streak(st, streak))
	return b.b.String()
}

// Streak renders the streak state.
func Streak(st theme.Styles, o progress.Outcome[progress.StreakReport]) string {
	b := &block{st: st}
	b.heading("Streak")
	notice(b, o)
	r := o.Value
	b.line("Days", r.Days)
	b.line("State", streakState(st, r))
	last := "never"
	if r.LastStudyDate != nil {
		last = r.LastStudyDate.String()
	}
	b.line("Last studied", last)
	return b.b.String()
}

func streakState(st theme.Styles, r progress.StreakReport) string {
	switch {
	case r.NeverStudied:
		return st.Hint.Render("not started")
	case r.State == progress.StreakActive:
		return st.Good.Render("active")
	case r.State == progress.StreakAtRisk:
		return st.Warn.Render("at risk, study today")
	default:
		return st.Bad.Render("broken")
	}
}

// Weekly renders the seven-day report.
func Weekly(st theme.Styles, o progress.Outcome[progress.WeeklyReport], width int) string {
	b := &block{st: st}
	b.heading("Last 7 days")
	notice(b, o)
	r := o.Value
	b.line("Study time", minutes(r.TotalStudyTime))
	b.line("Sessions", r.SessionsCompleted)
	b.line("Average session", minutes(r.AverageSessionLength))
	b.line("Most studied", r.MostStudiedSubject)
	b.line("Streak", fmt.Sprintf("%d days", r.StreakDays))
	b.raw("")
	goal := fmt.Sprintf("Goal %d min", progress.WeeklyGoalMinutes)
	b.raw("  " + components.NewProgressBar(st, goal, r.WeeklyGoalProgress, barWidth(width)).View())
	return b.b.String()
}

// Monthly renders the thirty-day report.
func Monthly(st theme.Styles, o progress.Outcome[progress.MonthlyReport], width int) string {
	b := &block{st: st}
	b.heading("Last 30 days")
	notice(b, o)
	r := o.Value
	b.line("Study time", minutes(r.TotalStudyTime))
	b.line("Lessons completed", r.LessonsCompleted)
	b.line("Tests completed", r.TestsCompleted)
	b.line("Average test score", r.AverageTestScore)
	if len(r.SubjectBreakdown) > 0 {
		b.heading("Subjects")
		for _, s := range r.SubjectBreakdown {
			label := fmt.Sprintf("%-16s %4d min", truncate(s.Subject, 16), s.Time)
			b.raw("  " + components.NewProgressBar(st, label, float64(s.Progress), barWidth(width)).View())
		}
	}
	b.heading("Highlights")
	b.list("Improvement areas", r.ImprovementAreas)
	b.list("Achievements", r.Achievements)
	return b.b.String()
}

// Insights renders study-habit insights.
func Insights(st theme.Styles, o progress.Outcome[progress.Insights]) string {
	b := &block{st: st}
	b.heading("Insights")
	notice(b, o)
	r := o.Value
	b.line("Preferred study time", r.PreferredStudyTime)
	b.list("Strong subjects", r.StrongSubjects)
	b.list("Weak subjects", r.WeakSubjects)
	b.list("Patterns", r.StudyPatterns)
	b.list("Recommendations", r.Recommendations)
	return b.b.String()
}

// Subjects renders per-subject syllabus progress.
func Subjects(st theme.Styles, o progress.Outcome[[]progress.SubjectProgress], width int) string {
	b := &block{st: st}
	b.heading("Subjects")
	notice(b, o)
	if len(o.Value) == 0 {
		b.raw(st.Hint.Render("  no subjects yet: run studypulse subjects init"))
		return b.b.String()
	}
	for _, sp := range o.Value {
		label := fmt.Sprintf("%-16s %2d/%-2d", truncate(sp.SubjectName, 16), sp.CompletedTopics, sp.TotalTopics)
		b.raw("  " + components.NewProgressBar(st, label, float64(sp.ProgressPercentage), barWidth(width)).View())
	}
	return b.b.String()
}

// Overview renders the landing tab: counters, streak, week and subjects.
func Overview(st theme.Styles, snap progress.Snapshot, width int) string {
	if snap.SetupIncomplete() {
		return st.Bad.Render(SetupMessage) + "\n"
	}
	return Stats(st, snap.Stats, snap.Streak) + Subjects(st, snap.Subjects, width)
}

func minutes(n int) string {
	if n < 60 {
		return fmt.Sprintf("%d min", n)
	}
	return fmt.Sprintf("%dh %02dm", n/60, n%60)
}

func barWidth(width int) int {
	return min(max(width-4, 30), 72)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
