package analytics

import (
	"testing"
	"time"
)

func TestStreak(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return now.AddDate(0, 0, offset)
	}

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no completions", nil, 0},
		{"today only", []time.Time{day(0)}, 1},
		{"three consecutive days", []time.Time{day(0), day(-1), day(-2)}, 3},
		{"anchored at yesterday", []time.Time{day(-1), day(-2)}, 2},
		{"broken chain", []time.Time{day(0), day(-2), day(-3)}, 1},
		{"stale streak", []time.Time{day(-2), day(-3)}, 0},
		{"same-day duplicates count once", []time.Time{day(0), day(0), day(-1)}, 2},
		{"unsorted input", []time.Time{day(-2), day(0), day(-1)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.dates, now); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakNormalizesTimeOfDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 5, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 8, 27, 0, 1, 0, 0, time.UTC),
	}

	if got := Streak(dates, now); got != 2 {
		t.Errorf("Streak() = %d, want 2 regardless of time of day", got)
	}
}
