package asrun

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/region"
)

// Fixed-width column layout (0-indexed byte offsets, end exclusive)
const (
	channelStart      = 0
	channelEnd        = 6
	timestampStart    = 55
	timestampEnd      = 75
	materialKeyStart  = 119
	materialKeyEnd    = 151
	materialTypeIndex = 188
	titleStart        = 295
	titleEnd          = 359

	// MinLineLength is the shortest line that can hold the title field
	MinLineLength = 360

	timestampLayout = "20060102 15:04:05"
)

// ErrMissingChannel is returned for a line whose market-channel field is blank
var ErrMissingChannel = errors.New("market channel field is empty")

// Decoder turns AS-RUN file text into ParsedLogData
type Decoder struct {
	resolver *region.Resolver
}

// NewDecoder creates a decoder that converts timestamps with resolver
func NewDecoder(resolver *region.Resolver) *Decoder {
	return &Decoder{resolver: resolver}
}

// Decode decodes every usable line of text. Blank and short lines are
// dropped, lines with a malformed timestamp are kept without time fields,
// and a line that fails to decode is logged and skipped.
//
// A wall clock repeated by a daylight saving fall-back takes the earliest
// instant not before the previous timed line, so a log that runs through the
// repeated hour stays in order. With no such instant the daylight occurrence
// is used.
func (d *Decoder) Decode(text []byte, regionCode string) *ParsedLogData {
	zone := d.resolver.Resolve(regionCode)
	data := &ParsedLogData{Zone: zone}

	lines := strings.Split(string(text), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var prev *time.Time
	for i, line := range lines {
		lineNumber := i + 1
		line = strings.TrimRight(line, "\r")
		data.Stats.TotalLines++

		if strings.TrimSpace(line) == "" {
			data.Stats.BlankLines++
			continue
		}
		if len(line) < MinLineLength {
			data.Stats.ShortLines++
			continue
		}

		entry, err := decodeLine(line, lineNumber, zone.Location, prev)
		if err != nil {
			data.Stats.FailedLines++
			logger.Log.Debug().
				Err(err).
				Int("line", lineNumber).
				Msg("Skipping undecodable AS-RUN line")
			continue
		}

		if entry.HasTimestamp() {
			prev = entry.DateTimeUTC
		} else {
			data.Stats.MalformedTimestamps++
		}
		data.Stats.Decoded++

		data.AllEntries = append(data.AllEntries, entry)
		switch {
		case entry.IsBillboard():
			data.Billboards = append(data.Billboards, entry)
		case entry.IsProgram():
			data.Programs = append(data.Programs, entry)
		}
	}

	logger.Log.Debug().
		Str("region", zone.Code).
		Int("total_lines", data.Stats.TotalLines).
		Int("decoded", data.Stats.Decoded).
		Int("programs", len(data.Programs)).
		Int("billboards", len(data.Billboards)).
		Int("short_lines", data.Stats.ShortLines).
		Int("malformed_timestamps", data.Stats.MalformedTimestamps).
		Msg("Decoded AS-RUN log")

	return data
}

// decodeLine extracts the fixed-width fields of a single line. prev is the
// UTC instant of the last timed line, nil at the start of the file.
func decodeLine(line string, lineNumber int, loc *time.Location, prev *time.Time) (*LogEntry, error) {
	channel := strings.TrimSpace(field(line, channelStart, channelEnd))
	if channel == "" {
		return nil, fmt.Errorf("line %d: %w", lineNumber, ErrMissingChannel)
	}

	code := strings.TrimSpace(field(line, materialTypeIndex, materialTypeIndex+1))
	materialType := ParseMaterialType(code)
	title := strings.TrimSpace(field(line, titleStart, titleEnd))

	entry := &LogEntry{
		LineNumber:    lineNumber,
		MarketChannel: channel,
		MaterialKey:   strings.TrimSpace(field(line, materialKeyStart, materialKeyEnd)),
		MaterialCode:  code,
		MaterialType:  materialType,
		DatabaseTitle: title,
		Billboard:     ClassifyBillboard(materialType, title),
		RawLine:       strings.TrimSpace(line),
	}

	if civil, ok := parseTimestamp(field(line, timestampStart, timestampEnd)); ok {
		utc := pickInstant(region.Interpretations(civil, loc), prev)
		local := utc.In(loc)
		entry.LocalDateTime = &local
		entry.DateTimeUTC = &utc
		entry.Time = &TimeOfDay{Hour: civil.Hour(), Minute: civil.Minute(), Second: civil.Second()}
	}

	return entry, nil
}

// pickInstant returns the first candidate not before prev, or the earliest
// candidate when every one is
func pickInstant(candidates []time.Time, prev *time.Time) time.Time {
	if prev != nil {
		for _, c := range candidates {
			if !c.Before(*prev) {
				return c
			}
		}
	}
	return candidates[0]
}

// parseTimestamp parses "YYYYMMDD HH:MM:SS:FF" as a civil time. Frames are
// validated for shape and then ignored.
func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) != len(timestampLayout)+3 {
		return time.Time{}, false
	}
	if s[len(timestampLayout)] != ':' || !isDigit(s[len(s)-2]) || !isDigit(s[len(s)-1]) {
		return time.Time{}, false
	}

	civil, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return civil, true
}

// field returns line[start:end] clamped to the line length
func field(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
