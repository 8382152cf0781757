// Package segment groups matched AS-RUN program entries into contiguous
// broadcast segments and resolves their end times.
package segment

import (
	"time"

	"github.com/stwalsh4118/asrun/internal/asrun"
	"github.com/stwalsh4118/asrun/internal/logger"
)

// Policy defaults
const (
	DefaultMaxGap           = 30 * time.Minute
	DefaultFallbackDuration = 2 * time.Hour
)

// EndSource records how a segment's end time was decided
type EndSource int

const (
	EndUnresolved EndSource = iota
	// EndFromNextProgram is the start of the next differing program
	EndFromNextProgram
	// EndFromFallback is start plus the fallback duration
	EndFromFallback
	// EndCappedByNextSegment is the start of the program's next segment
	EndCappedByNextSegment
)

// String returns the string representation of EndSource
func (s EndSource) String() string {
	switch s {
	case EndFromNextProgram:
		return "next_program"
	case EndFromFallback:
		return "fallback"
	case EndCappedByNextSegment:
		return "next_segment"
	default:
		return "unresolved"
	}
}

// Segment is a contiguous run of entries attributed to one program instance
type Segment struct {
	// Entries is the whole group in line order
	Entries []*asrun.LogEntry
	// Start is the first entry of the group with a usable timestamp
	Start *asrun.LogEntry
	// Last is the final entry of the group
	Last      *asrun.LogEntry
	StartTime time.Time
	EndTime   time.Time
	EndSource EndSource
}

// Duration returns EndTime - StartTime
func (s Segment) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Build splits matching entries into segments. Consecutive entries stay
// together unless both have timestamps and the gap between them exceeds
// maxGap. A group with no usable timestamp is discarded.
//
// matching must be in line order, which holds for any output of asrun.Match.
func Build(matching []*asrun.LogEntry, maxGap time.Duration) []Segment {
	var segments []Segment
	if len(matching) == 0 {
		return segments
	}

	groupStart := 0
	for i := range matching {
		last := i == len(matching)-1
		if !last && !splitsAfter(matching[i], matching[i+1], maxGap) {
			continue
		}

		group := matching[groupStart : i+1]
		groupStart = i + 1

		seg, ok := newSegment(group)
		if !ok {
			logger.Log.Debug().
				Int("first_line", group[0].LineNumber).
				Int("entries", len(group)).
				Msg("Discarding segment without a usable start time")
			continue
		}
		segments = append(segments, seg)
	}

	return segments
}

// splitsAfter reports whether a new segment starts between cur and next
func splitsAfter(cur, next *asrun.LogEntry, maxGap time.Duration) bool {
	if cur.DateTimeUTC == nil || next.DateTimeUTC == nil {
		return false
	}
	return next.DateTimeUTC.Sub(*cur.DateTimeUTC) > maxGap
}

func newSegment(group []*asrun.LogEntry) (Segment, bool) {
	for _, entry := range group {
		if entry.HasTimestamp() {
			return Segment{
				Entries:   group,
				Start:     entry,
				Last:      group[len(group)-1],
				StartTime: *entry.DateTimeUTC,
			}, true
		}
	}
	return Segment{}, false
}
