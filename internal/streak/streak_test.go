package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	at := func(daysAgo, hour int) time.Time {
		return time.Date(2026, 3, 10-daysAgo, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		activity []time.Time
		want     int
	}{
		{"no activity", nil, 0},
		{"today only", []time.Time{at(0, 9)}, 1},
		{"yesterday keeps streak", []time.Time{at(1, 9), at(2, 9)}, 2},
		{"gap breaks", []time.Time{at(0, 9), at(2, 9), at(3, 9)}, 1},
		{"two days ago is gone", []time.Time{at(2, 9)}, 0},
		{"same day counted once", []time.Time{at(0, 1), at(0, 2), at(1, 23)}, 2},
		{"unordered", []time.Time{at(2, 9), at(0, 9), at(1, 9)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Days(tt.activity, now, nil))
		})
	}
}

func TestDays_Location(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 20:00 UTC on the 9th is the 10th in loc.
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, loc)
	activity := []time.Time{time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)}

	assert.Equal(t, 1, Days(activity, now, loc))
	assert.Equal(t, 1, Days(activity, now, nil), "both fall on the 9th in UTC")
}

func TestNextMilestone(t *testing.T) {
	assert.Equal(t, 3, NextMilestone(0))
	assert.Equal(t, 7, NextMilestone(3))
	assert.Equal(t, 14, NextMilestone(7))
	assert.Equal(t, 30, NextMilestone(29))
	assert.Equal(t, 60, NextMilestone(30))
	assert.Equal(t, 90, NextMilestone(75))
}
