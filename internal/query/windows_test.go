package query

import (
	"testing"
	"time"
)

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		period       string
		expectedName string
		expectedDays int
	}{
		{"week", PeriodWeek, PeriodWeek, 7},
		{"month", PeriodMonth, PeriodMonth, 30},
		{"year", PeriodYear, PeriodYear, 365},
		{"unknown falls back to week", "quarter", PeriodWeek, 7},
		{"empty falls back to week", "", PeriodWeek, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, start := PeriodWindow(tt.period, now)
			if name != tt.expectedName {
				t.Errorf("Expected period %q, got %q", tt.expectedName, name)
			}
			expected := now.Add(-time.Duration(tt.expectedDays) * 24 * time.Hour)
			if !start.Equal(expected) {
				t.Errorf("Expected start %v, got %v", expected, start)
			}
		})
	}
}

func TestUTCDayBounds(t *testing.T) {
	// 23:30 in UTC+2 is 21:30 UTC, still the same UTC day
	loc := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2026, 6, 20, 23, 30, 0, 0, loc)

	start, end := UTCDayBounds(local)
	if start.Day() != 20 || start.Hour() != 0 || start.Location() != time.UTC {
		t.Errorf("Expected UTC midnight of the 20th, got %v", start)
	}
	if end.Day() != 20 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("Expected end of the 20th, got %v", end)
	}
}

func TestUTCWeekBounds(t *testing.T) {
	tests := []struct {
		name           string
		day            time.Time
		expectedMonday int
	}{
		{"wednesday", time.Date(2026, 6, 17, 10, 0, 0, 0, time.UTC), 15},
		{"monday itself", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 15},
		{"sunday maps back to prior monday", time.Date(2026, 6, 21, 10, 0, 0, 0, time.UTC), 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := UTCWeekBounds(tt.day)
			if start.Day() != tt.expectedMonday || start.Weekday() != time.Monday {
				t.Errorf("Expected Monday the %dth, got %v", tt.expectedMonday, start)
			}
			if end.Weekday() != time.Sunday {
				t.Errorf("Expected week to end on Sunday, got %v", end)
			}
			if !end.After(start) {
				t.Errorf("Expected end after start, got %v / %v", start, end)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		target   time.Time
		expected int
	}{
		{"same instant", now, 0},
		{"half a day ahead rounds up", now.Add(12 * time.Hour), 1},
		{"exactly three days", now.Add(72 * time.Hour), 3},
		{"past", now.Add(-36 * time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(now, tt.target); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
