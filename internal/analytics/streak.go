package analytics

import (
	"sort"
	"time"
)

// Streak counts consecutive calendar days with at least one completed
// attempt, walking backward from the most recent completion date. The
// chain only counts when it is anchored at today or yesterday;
// otherwise the streak is broken and the result is 0.
func Streak(completionDates []time.Time, now time.Time) int {
	if len(completionDates) == 0 {
		return 0
	}

	seen := make(map[time.Time]bool, len(completionDates))
	var days []time.Time
	for _, d := range completionDates {
		day := d.UTC().Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := now.UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	latest := days[0]
	if !latest.Equal(today) && !latest.Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			streak++
			continue
		}
		break
	}
	return streak
}
