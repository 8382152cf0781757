package ingest

import (
	"time"

	"github.com/stwalsh4118/asrun/internal/segment"
)

// FileStatus is the outcome of ingesting one file
type FileStatus string

// File status constants
const (
	StatusProcessed FileStatus = "processed"
	StatusSkipped   FileStatus = "skipped"
	StatusFailed    FileStatus = "failed"
)

// Skip reasons
const (
	ReasonInvalidFilename  = "invalid filename"
	ReasonUnknownRegion    = "unknown region"
	ReasonAlreadyProcessed = "already processed"
)

// FileRef addresses one AS-RUN object
type FileRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key" binding:"required"`
}

// FileResult summarises the ingestion of one file
type FileResult struct {
	Bucket            string     `json:"bucket"`
	Key               string     `json:"key"`
	Status            FileStatus `json:"status"`
	Reason            string     `json:"reason,omitempty"`
	ProgramsMatched   int        `json:"programs_matched"`
	BroadcastsCreated int        `json:"broadcasts_created"`
	SegmentsSkipped   int        `json:"segments_skipped"`
}

// BatchSummary aggregates the results of a batch, in input order
type BatchSummary struct {
	Files             []FileResult `json:"files"`
	BroadcastsCreated int          `json:"broadcasts_created"`
	ProgramsMatched   int          `json:"programs_matched"`
	Processed         int          `json:"processed"`
	Skipped           int          `json:"skipped"`
	Failed            int          `json:"failed"`
}

func (b *BatchSummary) add(r FileResult) {
	b.Files = append(b.Files, r)
	b.BroadcastsCreated += r.BroadcastsCreated
	b.ProgramsMatched += r.ProgramsMatched
	switch r.Status {
	case StatusProcessed:
		b.Processed++
	case StatusSkipped:
		b.Skipped++
	case StatusFailed:
		b.Failed++
	}
}

// Options tunes segmentation and batch execution
type Options struct {
	MaxGap           time.Duration
	FallbackDuration time.Duration
	Workers          int
	// Reprocess ingests files that already have a log file reference
	Reprocess bool
	// DefaultBucket is used for file references without a bucket
	DefaultBucket string
}

// DefaultOptions returns the standard segmentation policy
func DefaultOptions() Options {
	return Options{
		MaxGap:           segment.DefaultMaxGap,
		FallbackDuration: segment.DefaultFallbackDuration,
		Workers:          4,
	}
}
