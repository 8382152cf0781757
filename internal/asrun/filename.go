package asrun

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidFilename is returned when an object name does not follow
// YYYYMMDD_REGION-CHANNEL.LOG
var ErrInvalidFilename = errors.New("invalid AS-RUN filename")

// Pattern: "20260104_BNE-TEN.LOG", case-insensitive
var patternLogFilename = regexp.MustCompile(`(?i)^(\d{8})_([a-z]+)-([a-z0-9]+)\.log$`)

// FileInfo is the metadata carried by an AS-RUN object name
type FileInfo struct {
	Date    time.Time // civil date, UTC location
	Region  string    // upper case
	Channel string    // upper case
}

// DateString returns the log date as YYYY-MM-DD
func (f FileInfo) DateString() string {
	return f.Date.Format(time.DateOnly)
}

// ParseFilename extracts date, region and channel from an object key. Any
// directory prefix in the key is ignored.
func ParseFilename(key string) (FileInfo, error) {
	name := path.Base(strings.ReplaceAll(key, "\\", "/"))

	matches := patternLogFilename.FindStringSubmatch(name)
	if matches == nil {
		return FileInfo{}, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	date, err := time.Parse("20060102", matches[1])
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: bad date in %q", ErrInvalidFilename, name)
	}

	return FileInfo{
		Date:    date,
		Region:  strings.ToUpper(matches[2]),
		Channel: strings.ToUpper(matches[3]),
	}, nil
}

// IsLogFilename reports whether key looks like an AS-RUN log object
func IsLogFilename(key string) bool {
	_, err := ParseFilename(key)
	return err == nil
}
