package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBroadcast_Overlaps(t *testing.T) {
	base := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	existing := NewBroadcast("UNITED CUP", uuid.New(), "TEN", "BNE", at(10, 0), at(11, 0))

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"contained", at(10, 30), at(10, 45), true},
		{"straddles start", at(9, 30), at(10, 30), true},
		{"straddles end", at(10, 45), at(11, 30), true},
		{"contains existing", at(9, 0), at(12, 0), true},
		{"identical", at(10, 0), at(11, 0), true},
		{"abutting after", at(11, 0), at(12, 0), false},
		{"abutting before", at(9, 0), at(10, 0), false},
		{"disjoint", at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.start, tt.end))
		})
	}
}

func TestNewBroadcast_NormalisesToUTC(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	start := time.Date(2026, 1, 4, 6, 0, 0, 0, loc)

	b := NewBroadcast("UNITED CUP", uuid.New(), "TEN", "BNE", start, start.Add(2*time.Hour))

	assert.Equal(t, time.UTC, b.StartTime.Location())
	assert.Equal(t, time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC), b.StartTime)
	assert.Equal(t, 2*time.Hour, b.Duration())
	assert.Equal(t, BroadcastStatusPending, b.Status)
}

func TestNewDay_UsesCalendarDate(t *testing.T) {
	day := NewDay(uuid.New(), time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-03", day.Date)
}
