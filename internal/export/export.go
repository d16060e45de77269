// Package export writes a user's progress reports to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/studypulse/internal/progress"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetWeekly   = "Weekly"
	SheetMonthly  = "Monthly"
	SheetInsights = "Insights"
	SheetSubjects = "Subjects"
)

// Report is everything one workbook shows.
type Report struct {
	progress.Snapshot
	UserID      string
	GeneratedAt time.Time
}

// Collect reads every report for userID. Reads never fail; degraded
// sections are flagged in the workbook.
func Collect(ctx context.Context, svc *progress.Service, userID string, now time.Time) Report {
	return Report{
		Snapshot:    svc.Snapshot(ctx, userID),
		UserID:      userID,
		GeneratedAt: now,
	}
}

type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) rows(sheet string, rows [][]any) { w.rowsAt(sheet, 1, rows) }

// table writes a bold header row followed by data rows.
func (w *sheetWriter) table(sheet string, header []any, data [][]any) {
	w.rows(sheet, append([][]any{header}, data...))
	if w.err != nil {
		return
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, "A1", end, w.header)
}

// Write renders r as an .xlsx workbook.
func Write(out io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	w := &sheetWriter{f: f, header: header}

	f.SetSheetName("Sheet1", SheetSummary)
	for _, name := range []string{SheetWeekly, SheetMonthly, SheetInsights, SheetSubjects} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: sheet %s: %w", name, err)
		}
	}

	s := r.Stats.Value
	last := "never"
	if s.LastStudyDate != nil {
		last = s.LastStudyDate.String()
	}
	degraded := strings.Join(r.Degraded(), ", ")
	if degraded == "" {
		degraded = "none"
	}
	w.table(SheetSummary, []any{"Field", "Value"}, [][]any{
		{"User", r.UserID},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Streak (days)", s.StudyStreakDays},
		{"Streak state", string(r.Streak.Value.State)},
		{"Last study date", last},
		{"Total study time (min)", s.TotalStudyTimeMinutes},
		{"This week (min)", s.WeeklyStudyTime},
		{"This month (min)", s.MonthlyStudyTime},
		{"Lessons completed", s.CompletedLessons},
		{"Tests taken", s.TotalTestsTaken},
		{"Average test score", s.AverageTestScore},
		{"AI tutor sessions", s.AISessionsCount},
		{"Unavailable sections", degraded},
	})

	wk := r.Weekly.Value
	w.table(SheetWeekly, []any{"Metric", "Value"}, [][]any{
		{"Total study time (min)", wk.TotalStudyTime},
		{"Sessions completed", wk.SessionsCompleted},
		{"Average session length (min)", wk.AverageSessionLength},
		{"Most studied subject", wk.MostStudiedSubject},
		{"Weekly goal progress (%)", wk.WeeklyGoalProgress},
		{"Streak (days)", wk.StreakDays},
	})

	mo := r.Monthly.Value
	breakdown := make([][]any, 0, len(mo.SubjectBreakdown))
	for _, st := range mo.SubjectBreakdown {
		breakdown = append(breakdown, []any{st.Subject, st.Time, st.Progress})
	}
	w.table(SheetMonthly, []any{"Subject", "Time (min)", "Progress (%)"}, breakdown)
	if w.err == nil {
		base := len(breakdown) + 3
		w.rowsAt(SheetMonthly, base, [][]any{
			{"Total study time (min)", mo.TotalStudyTime},
			{"Lessons completed", mo.LessonsCompleted},
			{"Tests completed", mo.TestsCompleted},
			{"Average test score", mo.AverageTestScore},
			{"Improvement areas", strings.Join(mo.ImprovementAreas, ", ")},
			{"Achievements", strings.Join(mo.Achievements, ", ")},
		})
	}

	in := r.Insights.Value
	insights := [][]any{{"Preferred study time", in.PreferredStudyTime}}
	for _, s := range in.StrongSubjects {
		insights = append(insights, []any{"Strong subject", s})
	}
	for _, s := range in.WeakSubjects {
		insights = append(insights, []any{"Weak subject", s})
	}
	for _, p := range in.StudyPatterns {
		insights = append(insights, []any{"Pattern", p})
	}
	for _, rec := range in.Recommendations {
		insights = append(insights, []any{"Recommendation", rec})
	}
	w.table(SheetInsights, []any{"Kind", "Detail"}, insights)

	subjects := make([][]any, 0, len(r.Subjects.Value))
	for _, sp := range r.Subjects.Value {
		subjects = append(subjects, []any{sp.SubjectName, sp.CompletedTopics, sp.TotalTopics, sp.ProgressPercentage})
	}
	w.table(SheetSubjects, []any{"Subject", "Completed topics", "Total topics", "Progress (%)"}, subjects)

	if w.err != nil {
		return fmt.Errorf("export: %w", w.err)
	}
	for _, name := range f.GetSheetList() {
		if err := f.SetColWidth(name, "A", "A", 30); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// rowsAt writes rows starting at the given 1-based row.
func (w *sheetWriter) rowsAt(sheet string, start int, rows [][]any) {
	for i, row := range rows {
		if w.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			w.err = err
			return
		}
		w.err = w.f.SetSheetRow(sheet, cell, &row)
	}
}
