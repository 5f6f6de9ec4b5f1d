package progression

import "time"

// StartOfDay normalizes t to midnight in its own location. All daily
// bookkeeping (assignment, completion, streaks) compares days produced by
// this function so assignment and completion can never disagree on the
// day boundary.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func isYesterday(last, today time.Time) bool {
	yesterday := today.AddDate(0, 0, -1)
	return SameDay(last, yesterday)
}
