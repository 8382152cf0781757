package segment

import (
	"sort"
	"time"

	"github.com/stwalsh4118/asrun/internal/asrun"
)

// EndResolver finds segment end times from the surrounding entry stream.
// It indexes the file's timed program entries once so each lookup is a
// binary search plus a short forward scan.
type EndResolver struct {
	programs []*asrun.LogEntry
	fallback time.Duration
}

// NewEndResolver indexes data for end resolution. A non-positive fallback
// uses DefaultFallbackDuration.
func NewEndResolver(data *asrun.ParsedLogData, fallback time.Duration) *EndResolver {
	if fallback <= 0 {
		fallback = DefaultFallbackDuration
	}

	programs := make([]*asrun.LogEntry, 0, len(data.Programs))
	for _, entry := range data.AllEntries {
		if entry.IsProgram() && entry.HasTimestamp() {
			programs = append(programs, entry)
		}
	}

	return &EndResolver{programs: programs, fallback: fallback}
}

// End returns the UTC start of the first timed program entry after the
// segment whose title does not match keyword. When there is none, or it
// does not come after the segment start, the fallback duration applies.
func (r *EndResolver) End(seg Segment, keyword string) (time.Time, EndSource) {
	after := seg.Last.LineNumber
	i := sort.Search(len(r.programs), func(i int) bool {
		return r.programs[i].LineNumber > after
	})

	for ; i < len(r.programs); i++ {
		next := r.programs[i]
		if asrun.Matches(next, keyword) {
			continue
		}
		if end := *next.DateTimeUTC; end.After(seg.StartTime) {
			return end, EndFromNextProgram
		}
		break
	}

	return seg.StartTime.Add(r.fallback), EndFromFallback
}

// Resolve sets the end time of each of one program's segments. An end that
// would run past the program's next segment is capped at that segment's
// start.
func Resolve(segments []Segment, resolver *EndResolver, keyword string) []Segment {
	for i := range segments {
		segments[i].EndTime, segments[i].EndSource = resolver.End(segments[i], keyword)
	}

	for i := 0; i+1 < len(segments); i++ {
		cur, next := &segments[i], segments[i+1]
		if next.StartTime.After(cur.StartTime) && cur.EndTime.After(next.StartTime) {
			cur.EndTime = next.StartTime
			cur.EndSource = EndCappedByNextSegment
		}
	}

	return segments
}
