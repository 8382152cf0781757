// Package asrun decodes fixed-width broadcast AS-RUN logs into typed entries
// and matches program entries against catalog keywords.
package asrun

import (
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/asrun/internal/region"
)

// MaterialType classifies what an entry aired
type MaterialType int

const (
	// MaterialOther is any material code the ingester ignores
	MaterialOther MaterialType = iota
	// MaterialInterstitial ("I") is a candidate billboard
	MaterialInterstitial
	// MaterialProgram ("M" or "S") is a program segment
	MaterialProgram
)

// String returns the string representation of MaterialType
func (m MaterialType) String() string {
	switch m {
	case MaterialInterstitial:
		return "interstitial"
	case MaterialProgram:
		return "program"
	default:
		return "other"
	}
}

// ParseMaterialType maps a raw material code to its MaterialType
func ParseMaterialType(code string) MaterialType {
	switch code {
	case "I":
		return MaterialInterstitial
	case "M", "S":
		return MaterialProgram
	default:
		return MaterialOther
	}
}

// BillboardKind marks the open, middle or close of a program
type BillboardKind int

const (
	BillboardNone BillboardKind = iota
	BillboardOpen
	BillboardMiddle
	BillboardClose
)

// String returns the string representation of BillboardKind
func (b BillboardKind) String() string {
	switch b {
	case BillboardOpen:
		return "open"
	case BillboardMiddle:
		return "middle"
	case BillboardClose:
		return "close"
	default:
		return "none"
	}
}

var billboardPrefixes = []struct {
	prefix string
	kind   BillboardKind
}{
	{"OB", BillboardOpen},
	{"MB", BillboardMiddle},
	{"CB", BillboardClose},
}

// ClassifyBillboard derives the billboard kind from the material type and
// title prefix. Only interstitials can be billboards.
func ClassifyBillboard(materialType MaterialType, title string) BillboardKind {
	if materialType != MaterialInterstitial {
		return BillboardNone
	}
	for _, p := range billboardPrefixes {
		if strings.HasPrefix(title, p.prefix) {
			return p.kind
		}
	}
	return BillboardNone
}

// TimeOfDay is a local wall clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Seconds returns seconds since local midnight
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// String formats the time as HH:MM:SS
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// LogEntry is one decoded AS-RUN line. Entries are shared by pointer between
// the projections of ParsedLogData and are never modified after decoding.
type LogEntry struct {
	LineNumber    int
	MarketChannel string
	// LocalDateTime, DateTimeUTC and Time are nil when the timestamp field
	// was malformed
	LocalDateTime *time.Time
	DateTimeUTC   *time.Time
	Time          *TimeOfDay
	MaterialKey   string
	MaterialCode  string
	MaterialType  MaterialType
	DatabaseTitle string
	Billboard     BillboardKind
	RawLine       string
}

// IsBillboard reports whether the entry is an open, middle or close billboard
func (e *LogEntry) IsBillboard() bool {
	return e.Billboard != BillboardNone
}

// IsProgram reports whether the entry is a program segment
func (e *LogEntry) IsProgram() bool {
	return e.MaterialType == MaterialProgram
}

// HasTimestamp reports whether the timestamp field decoded
func (e *LogEntry) HasTimestamp() bool {
	return e.DateTimeUTC != nil
}

// Stats holds per-file decoding diagnostics
type Stats struct {
	TotalLines          int
	BlankLines          int
	ShortLines          int
	FailedLines         int
	MalformedTimestamps int
	Decoded             int
}

// ParsedLogData holds the projections of one file's entries, each in
// original line order
type ParsedLogData struct {
	Billboards []*LogEntry
	Programs   []*LogEntry
	AllEntries []*LogEntry
	Zone       region.Zone
	Stats      Stats
}
