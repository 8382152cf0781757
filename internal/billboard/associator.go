// Package billboard associates billboard interstitials with the on-air
// windows of a program in a decoded AS-RUN log.
package billboard

import (
	"sort"

	"github.com/stwalsh4118/asrun/internal/asrun"
)

const secondsPerDay = 24 * 60 * 60

// Window is a local time-of-day range in seconds since midnight, start
// inclusive and end exclusive. A window whose end is before its start wraps
// past midnight.
type Window struct {
	Program *asrun.LogEntry
	Start   int
	End     int
}

// Wraps reports whether the window crosses local midnight
func (w Window) Wraps() bool {
	return w.End < w.Start
}

// Contains reports whether seconds-since-midnight s falls in the window
func (w Window) Contains(s int) bool {
	if w.Wraps() {
		return s >= w.Start || s < w.End
	}
	return s >= w.Start && s < w.End
}

// Windows returns one window per timed program entry matching keyword. Each
// window runs until the next timed program entry of any title, or to the
// end of the day when there is none.
func Windows(data *asrun.ParsedLogData, keyword string) []Window {
	timed := make([]*asrun.LogEntry, 0, len(data.Programs))
	for _, entry := range data.Programs {
		if entry.Time != nil {
			timed = append(timed, entry)
		}
	}

	var windows []Window
	for _, program := range asrun.Match(timed, keyword) {
		w := Window{Program: program, Start: program.Time.Seconds(), End: secondsPerDay}

		after := program.LineNumber
		i := sort.Search(len(timed), func(i int) bool {
			return timed[i].LineNumber > after
		})
		if i < len(timed) {
			w.End = timed[i].Time.Seconds()
		}

		windows = append(windows, w)
	}
	return windows
}

// Associate returns the billboards that aired inside any window of the
// program identified by keyword. Each billboard entry appears once, in the
// order it was first found.
func Associate(data *asrun.ParsedLogData, keyword string) []*asrun.LogEntry {
	seen := make(map[*asrun.LogEntry]struct{})
	var result []*asrun.LogEntry

	for _, w := range Windows(data, keyword) {
		for _, bb := range data.Billboards {
			if bb.Time == nil || !w.Contains(bb.Time.Seconds()) {
				continue
			}
			if _, dup := seen[bb]; dup {
				continue
			}
			seen[bb] = struct{}{}
			result = append(result, bb)
		}
	}

	return result
}
