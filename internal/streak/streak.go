// Package streak derives a learner's daily activity streak from reward
// timestamps.
package streak

import (
	"time"
)

// Days counts the consecutive calendar days with activity that end today
// or yesterday. Days are computed in loc; a nil loc means UTC.
func Days(activity []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[time.Time]bool, len(activity))
	for _, t := range activity {
		seen[day(t, loc)] = true
	}

	cur := day(now, loc)
	if !seen[cur] {
		// An unfinished today does not break the streak.
		cur = cur.AddDate(0, 0, -1)
	}
	n := 0
	for seen[cur] {
		n++
		cur = cur.AddDate(0, 0, -1)
	}
	return n
}

func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NextMilestone returns the next streak milestone above current.
func NextMilestone(current int) int {
	for _, t := range []int{3, 7, 14, 30} {
		if t > current {
			return t
		}
	}
	// Beyond 30, every 30 days.
	return ((current / 30) + 1) * 30
}
