package query

import (
	"time"

	"creashort/internal/models"
)

// Analytics period keywords
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodWindow resolves a period keyword to its [start, now] window.
// Unknown keywords fall back to the week window; the returned period name
// reflects what was actually applied.
func PeriodWindow(period string, now time.Time) (string, time.Time) {
	switch period {
	case PeriodMonth:
		return PeriodMonth, now.Add(-30 * 24 * time.Hour)
	case PeriodYear:
		return PeriodYear, now.Add(-365 * 24 * time.Hour)
	case PeriodWeek:
		return PeriodWeek, now.Add(-7 * 24 * time.Hour)
	default:
		return PeriodWeek, now.Add(-7 * 24 * time.Hour)
	}
}

// UTCDayBounds returns the inclusive bounds of the UTC calendar day
// containing t.
func UTCDayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, time.UTC)
	return start, end
}

// UTCWeekBounds returns the inclusive bounds of the UTC calendar week
// (Monday through Sunday) containing t.
func UTCWeekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	daysToMonday := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		daysToMonday = 6
	}
	monday := t.AddDate(0, 0, -daysToMonday)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6).Add(24*time.Hour - time.Millisecond)
	return start, end
}

// GraceCutoff returns the behind-schedule threshold: timestamps before it
// are past the grace period.
func GraceCutoff(now time.Time) time.Time {
	return now.Add(-models.GracePeriod)
}

// DaysUntil returns the whole number of days from now until t, rounded up.
// Past timestamps yield zero or negative values.
func DaysUntil(now, t time.Time) int {
	diff := t.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
