package progress

// StreakState is the display state of a user's study streak.
type StreakState string

const (
	StreakActive StreakState = "active"
	StreakAtRisk StreakState = "at_risk"
	StreakBroken StreakState = "broken"
)

// ClassifyStreak derives the streak state from the last study date.
// A nil last date (never studied) and dates today or in the future are
// active; yesterday is at risk; anything older is broken.
func ClassifyStreak(today Date, last *Date) StreakState {
	if last == nil {
		return StreakActive
	}
	switch delta := today.DaysSince(*last); {
	case delta <= 0:
		return StreakActive
	case delta == 1:
		return StreakAtRisk
	default:
		return StreakBroken
	}
}

// NextStreak returns the streak length after studying on today, given the
// current length and the previous study date.
//
// A last date after today (clock skew or an out-of-order write) counts as
// same-day activity and leaves the streak unchanged.
func NextStreak(current int, last *Date, today Date) int {
	if last == nil {
		return 1
	}
	switch delta := today.DaysSince(*last); {
	case delta <= 0:
		return current
	case delta == 1:
		return current + 1
	default:
		return 1
	}
}

// StreakReport is the streak view handed to the display layer.
type StreakReport struct {
	State         StreakState `json:"state"`
	Days          int         `json:"days"`
	LastStudyDate *Date       `json:"last_study_date"`
	NeverStudied  bool        `json:"never_studied"`
}

// BuildStreakReport classifies stats as of today.
func BuildStreakReport(stats UserProgressStats, today Date) StreakReport {
	return StreakReport{
		State:         ClassifyStreak(today, stats.LastStudyDate),
		Days:          stats.StudyStreakDays,
		LastStudyDate: stats.LastStudyDate,
		NeverStudied:  stats.LastStudyDate == nil,
	}
}
