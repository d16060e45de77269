package progress

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/studypulse/internal/store"
)

// Analytics windows and thresholds.
const (
	WeeklyWindow         = 7 * 24 * time.Hour
	MonthlyWindow        = 30 * 24 * time.Hour
	InsightsSessionLimit = 100
	ConsistencySessions  = 14

	// WeeklyGoalMinutes is the fixed weekly study goal.
	WeeklyGoalMinutes = 300

	NoSubject = "None"
)

// Achievement badges.
const (
	BadgeHighAchiever     = "High Achiever"
	BadgeDedicatedLearner = "Dedicated Learner"
	BadgeStudyChampion    = "Study Champion"
	BadgeSubjectMaster    = "Subject Master"
)

// Engine computes read-only reports from recent sessions. Nothing is
// cached; every call re-reads the store.
type Engine struct {
	env *env
}

// WeeklyReport summarizes the last seven days.
type WeeklyReport struct {
	TotalStudyTime       int     `json:"totalStudyTime"`
	SessionsCompleted    int     `json:"sessionsCompleted"`
	AverageSessionLength int     `json:"averageSessionLength"`
	MostStudiedSubject   string  `json:"mostStudiedSubject"`
	WeeklyGoalProgress   float64 `json:"weeklyGoalProgress"`
	StreakDays           int     `json:"streakDays"`
}

// DefaultWeekly is the weekly report substituted when the store is unreachable.
func DefaultWeekly() WeeklyReport {
	return WeeklyReport{MostStudiedSubject: NoSubject}
}

// SubjectTime is one line of the monthly subject breakdown.
type SubjectTime struct {
	Subject  string `json:"subject"`
	Time     int    `json:"time"`
	Progress int    `json:"progress"`
}

// MonthlyReport summarizes the last thirty days.
type MonthlyReport struct {
	TotalStudyTime   int           `json:"totalStudyTime"`
	LessonsCompleted int           `json:"lessonsCompleted"`
	TestsCompleted   int           `json:"testsCompleted"`
	AverageTestScore int           `json:"averageTestScore"`
	SubjectBreakdown []SubjectTime `json:"subjectBreakdown"`
	ImprovementAreas []string      `json:"improvementAreas"`
	Achievements     []string      `json:"achievements"`
}

// DefaultMonthly is the monthly report substituted when the store is unreachable.
func DefaultMonthly() MonthlyReport {
	return MonthlyReport{
		SubjectBreakdown: []SubjectTime{},
		ImprovementAreas: []string{},
		Achievements:     []string{},
	}
}

// Insights describes study habits over the most recent sessions.
type Insights struct {
	PreferredStudyTime string   `json:"preferredStudyTime"`
	StrongSubjects     []string `json:"strongSubjects"`
	WeakSubjects       []string `json:"weakSubjects"`
	StudyPatterns      []string `json:"studyPatterns"`
	Recommendations    []string `json:"recommendations"`
}

// DefaultInsights is the insights report substituted when the store is unreachable.
func DefaultInsights() Insights {
	return Insights{
		PreferredStudyTime: NoSubject,
		StrongSubjects:     []string{},
		WeakSubjects:       []string{},
		StudyPatterns:      []string{},
		Recommendations:    []string{},
	}
}

func (e *Engine) sessions(ctx context.Context, f store.Filter) ([]StudySession, error) {
	var rows []sessionRow
	if err := e.env.gw.Select(ctx, store.TableStudySessions, f, &rows); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	out := make([]StudySession, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.session())
	}
	return out, nil
}

func (e *Engine) since(ctx context.Context, userID string, window time.Duration) ([]StudySession, error) {
	cutoff := e.env.clock().Add(-window).UnixMilli()
	return e.sessions(ctx, store.Where("user_id", userID).
		GTE("created_at", cutoff).
		OrderBy("created_at", true))
}

// Weekly reports on sessions created in the last seven days.
func (e *Engine) Weekly(ctx context.Context, userID string) Outcome[WeeklyReport] {
	ctx, cancel := e.env.readCtx(ctx)
	defer cancel()

	sessions, err := e.since(ctx, userID, WeeklyWindow)
	if err != nil {
		return degraded(e.env, "weekly analytics", userID, DefaultWeekly(), err)
	}
	stats, _, err := (&Aggregator{env: e.env}).load(ctx, userID)
	if err != nil {
		return degraded(e.env, "weekly analytics", userID, DefaultWeekly(), err)
	}
	return Ok(BuildWeekly(sessions, stats.StudyStreakDays))
}

// BuildWeekly folds the week's sessions into a report.
func BuildWeekly(sessions []StudySession, streakDays int) WeeklyReport {
	r := DefaultWeekly()
	r.StreakDays = streakDays
	r.SessionsCompleted = len(sessions)

	bySubject := map[string]int{}
	for _, s := range sessions {
		r.TotalStudyTime += s.DurationMinutes
		bySubject[s.Subject] += s.DurationMinutes
	}
	if len(sessions) > 0 {
		r.AverageSessionLength = roundDiv(float64(r.TotalStudyTime), float64(len(sessions)))
		r.MostStudiedSubject = mostStudied(bySubject)
	}
	r.WeeklyGoalProgress = GoalProgress(r.TotalStudyTime)
	return r
}

// GoalProgress returns the percentage of the weekly goal reached, capped at 100.
func GoalProgress(totalMinutes int) float64 {
	return min(float64(totalMinutes)/WeeklyGoalMinutes*100, 100)
}

// mostStudied picks the subject with the most minutes; ties go to the
// lexicographically smallest name.
func mostStudied(bySubject map[string]int) string {
	best, bestMinutes := NoSubject, -1
	for subject, minutes := range bySubject {
		if minutes > bestMinutes || (minutes == bestMinutes && subject < best) {
			best, bestMinutes = subject, minutes
		}
	}
	return best
}

// Monthly reports on sessions created in the last thirty days.
func (e *Engine) Monthly(ctx context.Context, userID string) Outcome[MonthlyReport] {
	ctx, cancel := e.env.readCtx(ctx)
	defer cancel()

	sessions, err := e.since(ctx, userID, MonthlyWindow)
	if err != nil {
		return degraded(e.env, "monthly analytics", userID, DefaultMonthly(), err)
	}
	subjects, err := (&Tracker{env: e.env}).list(ctx, userID)
	if err != nil {
		return degraded(e.env, "monthly analytics", userID, DefaultMonthly(), err)
	}
	return Ok(BuildMonthly(sessions, subjects))
}

// BuildMonthly folds the month's sessions and the current subject rows
// into a report.
func BuildMonthly(sessions []StudySession, subjects []SubjectProgress) MonthlyReport {
	r := DefaultMonthly()

	bySubject := map[string]int{}
	scoreSum, scored := 0, 0
	highScore := false
	for _, s := range sessions {
		r.TotalStudyTime += s.DurationMinutes
		bySubject[s.Subject] += s.DurationMinutes
		switch s.Type {
		case SessionLesson:
			r.LessonsCompleted++
		case SessionTest:
			r.TestsCompleted++
			if s.Score != nil {
				scoreSum += *s.Score
				scored++
				if *s.Score >= 90 {
					highScore = true
				}
			}
		}
	}
	if scored > 0 {
		r.AverageTestScore = roundDiv(float64(scoreSum), float64(scored))
	}

	subjectMaster := false
	for _, sp := range subjects {
		r.SubjectBreakdown = append(r.SubjectBreakdown, SubjectTime{
			Subject:  sp.SubjectName,
			Time:     bySubject[sp.SubjectName],
			Progress: sp.ProgressPercentage,
		})
		if sp.ProgressPercentage < 50 {
			r.ImprovementAreas = append(r.ImprovementAreas, sp.SubjectName)
		}
		if sp.ProgressPercentage >= 80 {
			subjectMaster = true
		}
	}

	if highScore {
		r.Achievements = append(r.Achievements, BadgeHighAchiever)
	}
	if r.LessonsCompleted >= 20 {
		r.Achievements = append(r.Achievements, BadgeDedicatedLearner)
	}
	if r.TotalStudyTime >= 1200 {
		r.Achievements = append(r.Achievements, BadgeStudyChampion)
	}
	if subjectMaster {
		r.Achievements = append(r.Achievements, BadgeSubjectMaster)
	}
	return r
}

// Insights reports study habits over the user's most recent sessions.
func (e *Engine) Insights(ctx context.Context, userID string) Outcome[Insights] {
	ctx, cancel := e.env.readCtx(ctx)
	defer cancel()

	sessions, err := e.sessions(ctx, store.Where("user_id", userID).
		OrderBy("created_at", true).
		Limit(InsightsSessionLimit))
	if err != nil {
		return degraded(e.env, "insights", userID, DefaultInsights(), err)
	}
	subjects, err := (&Tracker{env: e.env}).list(ctx, userID)
	if err != nil {
		return degraded(e.env, "insights", userID, DefaultInsights(), err)
	}
	return Ok(BuildInsights(sessions, subjects, e.env.loc))
}

// Time-of-day labels.
const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	Night     = "Night"
)

// TimeOfDay maps an hour of day to its label.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// Study pattern labels.
const (
	PatternLongSessions  = "Long study sessions"
	PatternShortSessions = "Short, frequent sessions"
	PatternModerate      = "Moderate session length"
	PatternDaily         = "Consistent daily study"
	PatternRegular       = "Regular study schedule"
)

// BuildInsights derives habits from sessions ordered newest first. Hours
// of day are taken in loc.
func BuildInsights(sessions []StudySession, subjects []SubjectProgress, loc *time.Location) Insights {
	r := DefaultInsights()

	var hours [24]int
	total, tests, tutor := 0, 0, 0
	for _, s := range sessions {
		hours[s.CreatedAt.In(loc).Hour()]++
		total += s.DurationMinutes
		switch s.Type {
		case SessionTest:
			tests++
		case SessionAITutor:
			tutor++
		}
	}

	if len(sessions) > 0 {
		// Mode hour, earliest hour on ties, then its bucket.
		mode := 0
		for h := 1; h < 24; h++ {
			if hours[h] > hours[mode] {
				mode = h
			}
		}
		r.PreferredStudyTime = TimeOfDay(mode)
	}

	for _, sp := range subjects {
		switch {
		case sp.ProgressPercentage >= 70:
			r.StrongSubjects = append(r.StrongSubjects, sp.SubjectName)
		case sp.ProgressPercentage < 50:
			r.WeakSubjects = append(r.WeakSubjects, sp.SubjectName)
		}
	}

	// Length labels use the exact mean; only the weekly report rounds it.
	avg := 0.0
	if len(sessions) > 0 {
		avg = float64(total) / float64(len(sessions))
		switch {
		case avg > 45:
			r.StudyPatterns = append(r.StudyPatterns, PatternLongSessions)
		case avg < 20:
			r.StudyPatterns = append(r.StudyPatterns, PatternShortSessions)
		default:
			r.StudyPatterns = append(r.StudyPatterns, PatternModerate)
		}
	}

	recent := sessions[:min(len(sessions), ConsistencySessions)]
	var days []string
	for _, s := range recent {
		d := s.SessionDate.String()
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	switch {
	case len(days) >= 10:
		r.StudyPatterns = append(r.StudyPatterns, PatternDaily)
	case len(days) >= 5:
		r.StudyPatterns = append(r.StudyPatterns, PatternRegular)
	}

	if len(r.WeakSubjects) > 0 {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Focus on improving %s", strings.Join(r.WeakSubjects, ", ")))
	}
	if avg < 20 {
		r.Recommendations = append(r.Recommendations,
			"Try longer study sessions of at least 20 minutes for deeper learning")
	}
	if len(days) < 5 {
		r.Recommendations = append(r.Recommendations,
			"Study on more days each week to build a consistent routine")
	}
	if tests < 5 {
		r.Recommendations = append(r.Recommendations,
			"Take more practice tests to check your understanding")
	}
	if tutor < 3 {
		r.Recommendations = append(r.Recommendations,
			"Ask the AI tutor when you get stuck on a topic")
	}
	return r
}
