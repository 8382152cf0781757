// Package region maps broadcast region codes to time zones and converts
// local AS-RUN wall clock times to UTC instants.
package region

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // zone data must not depend on the host image

	"github.com/stwalsh4118/asrun/internal/logger"
)

// DefaultCode is the region used when a code is not in the table
const DefaultCode = "SYD"

// Zone is the resolved time zone for a region code
type Zone struct {
	Code     string
	Name     string
	Location *time.Location
	// Fallback is true when the requested code was unknown and the default
	// zone was substituted
	Fallback bool
}

// Resolver resolves region codes against an injected zone table
type Resolver struct {
	zones       map[string]*time.Location
	names       map[string]string
	aliases     map[string]string
	defaultCode string
}

// DefaultTable returns the built-in region table
func DefaultTable() map[string]string {
	return map[string]string{
		"SYD": "Australia/Sydney",
		"MEL": "Australia/Melbourne",
		"BNE": "Australia/Brisbane",
		"PER": "Australia/Perth",
		"ADL": "Australia/Adelaide",
	}
}

// DefaultAliases returns the alternate spellings of DefaultTable codes
func DefaultAliases() map[string]string {
	return map[string]string{
		"BRI": "BNE",
		"ADE": "ADL",
	}
}

// NewResolver creates a resolver from a region code to IANA zone table.
// Codes are case-insensitive. defaultCode must be present in the table.
// aliases maps alternate spellings to a code in the table; an alias resolves
// to its canonical code so both spellings share one region key.
func NewResolver(table map[string]string, defaultCode string, aliases map[string]string) (*Resolver, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("region table is empty")
	}

	r := &Resolver{
		zones:       make(map[string]*time.Location, len(table)),
		names:       make(map[string]string, len(table)),
		aliases:     make(map[string]string, len(aliases)),
		defaultCode: normalize(defaultCode),
	}

	for code, name := range table {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load zone %q for region %q: %w", name, code, err)
		}
		key := normalize(code)
		r.zones[key] = loc
		r.names[key] = name
	}

	for alias, canonical := range aliases {
		a, c := normalize(alias), normalize(canonical)
		if _, ok := r.zones[a]; ok {
			return nil, fmt.Errorf("alias %q is also a region code", alias)
		}
		if _, ok := r.zones[c]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown region %q", alias, canonical)
		}
		r.aliases[a] = c
	}

	if _, ok := r.zones[r.canonical(r.defaultCode)]; !ok {
		return nil, fmt.Errorf("default region %q is not in the region table", defaultCode)
	}
	r.defaultCode = r.canonical(r.defaultCode)

	return r, nil
}

// MustDefault returns a resolver over DefaultTable and DefaultAliases with
// DefaultCode as fallback
func MustDefault() *Resolver {
	r, err := NewResolver(DefaultTable(), DefaultCode, DefaultAliases())
	if err != nil {
		panic(err)
	}
	return r
}

// Known reports whether the code or alias is in the table
func (r *Resolver) Known(code string) bool {
	_, ok := r.zones[r.canonical(normalize(code))]
	return ok
}

// Canonical returns the table code for code, following aliases
func (r *Resolver) Canonical(code string) string {
	return r.canonical(normalize(code))
}

func (r *Resolver) canonical(key string) string {
	if c, ok := r.aliases[key]; ok {
		return c
	}
	return key
}

// Codes returns the canonical region codes in sorted order
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.zones))
	for code := range r.zones {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Resolve returns the zone for a region code. Unknown codes resolve to the
// default zone with Fallback set, and the substitution is logged.
func (r *Resolver) Resolve(code string) Zone {
	key := r.canonical(normalize(code))
	if loc, ok := r.zones[key]; ok {
		return Zone{Code: key, Name: r.names[key], Location: loc}
	}

	logger.Log.Warn().
		Str("region", code).
		Str("default_region", r.defaultCode).
		Msg("Unknown region code, using default zone")

	return Zone{
		Code:     r.defaultCode,
		Name:     r.names[r.defaultCode],
		Location: r.zones[r.defaultCode],
		Fallback: true,
	}
}

// ToUTC interprets the wall clock fields of civil in the region's zone and
// returns the UTC instant. The location attached to civil is ignored.
func (r *Resolver) ToUTC(civil time.Time, code string) (time.Time, Zone) {
	zone := r.Resolve(code)
	return LocalToUTC(civil, zone.Location), zone
}

// LocalToUTC reinterprets civil's wall clock in loc. A wall clock repeated
// by a daylight saving fall-back resolves to its first (daylight) occurrence.
func LocalToUTC(civil time.Time, loc *time.Location) time.Time {
	return Interpretations(civil, loc)[0]
}

// Interpretations returns the UTC instants whose wall clock in loc equals
// civil's, earliest first. There are two during a fall-back fold. A wall
// clock skipped by a spring-forward gap has none of its own and yields the
// single instant time.Date normalises it to.
func Interpretations(civil time.Time, loc *time.Location) []time.Time {
	wall := time.Date(civil.Year(), civil.Month(), civil.Day(),
		civil.Hour(), civil.Minute(), civil.Second(), civil.Nanosecond(), time.UTC)
	guess := time.Date(civil.Year(), civil.Month(), civil.Day(),
		civil.Hour(), civil.Minute(), civil.Second(), civil.Nanosecond(), loc)

	var out []time.Time
	seen := make(map[int]bool, 3)
	for _, at := range []time.Time{guess.Add(-3 * time.Hour), guess, guess.Add(3 * time.Hour)} {
		_, offset := at.Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		candidate := wall.Add(-time.Duration(offset) * time.Second)
		if sameWallClock(candidate.In(loc), wall) {
			out = append(out, candidate.UTC())
		}
	}

	if len(out) == 0 {
		return []time.Time{guess.UTC()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() &&
		a.Second() == b.Second() && a.Nanosecond() == b.Nanosecond()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
