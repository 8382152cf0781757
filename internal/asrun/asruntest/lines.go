// Package asruntest builds fixed-width AS-RUN fixtures for tests.
package asruntest

import (
	"strings"
)

// Line describes one fixture line. Empty fields are left blank.
type Line struct {
	Channel   string
	Timestamp string // "YYYYMMDD HH:MM:SS:FF"
	Key       string
	Type      string
	Title     string
}

// String renders the line at its full fixed width (360 bytes)
func (l Line) String() string {
	buf := []byte(strings.Repeat(" ", 360))
	put(buf, 0, 6, l.Channel)
	put(buf, 55, 75, l.Timestamp)
	put(buf, 119, 151, l.Key)
	put(buf, 188, 189, l.Type)
	put(buf, 295, 359, l.Title)
	return string(buf)
}

// Program returns a program ("M") line
func Program(timestamp, title string) Line {
	return Line{Channel: "TEN   ", Timestamp: timestamp, Key: keyFor(title, timestamp), Type: "M", Title: title}
}

// Interstitial returns an interstitial ("I") line
func Interstitial(timestamp, title string) Line {
	return Line{Channel: "TEN", Timestamp: timestamp, Key: keyFor(title, timestamp), Type: "I", Title: title}
}

// File joins lines into file text with a trailing newline
func File(lines ...Line) []byte {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func keyFor(title, timestamp string) string {
	key := strings.ReplaceAll(title+timestamp, " ", "")
	if len(key) > 32 {
		key = key[:32]
	}
	return key
}

func put(buf []byte, start, end int, value string) {
	if len(value) > end-start {
		value = value[:end-start]
	}
	copy(buf[start:end], value)
}
