// Package ingest turns AS-RUN log objects into persisted days, broadcasts
// and log file references.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/asrun"
	"github.com/stwalsh4118/asrun/internal/billboard"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/metrics"
	"github.com/stwalsh4118/asrun/internal/models"
	"github.com/stwalsh4118/asrun/internal/region"
	"github.com/stwalsh4118/asrun/internal/segment"
	"github.com/stwalsh4118/asrun/internal/storage"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Service orchestrates decoding, segmentation and persistence of AS-RUN files
type Service struct {
	database *db.DB
	repos    *db.Repositories
	store    storage.ObjectStore
	resolver *region.Resolver
	decoder  *asrun.Decoder
	metrics  *metrics.IngestMetrics
	locks    *keyLock
	opts     Options
}

// NewService creates a new ingestion service. metrics may be nil.
func NewService(database *db.DB, repos *db.Repositories, store storage.ObjectStore, resolver *region.Resolver, m *metrics.IngestMetrics, opts Options) *Service {
	if opts.MaxGap <= 0 {
		opts.MaxGap = segment.DefaultMaxGap
	}
	if opts.FallbackDuration <= 0 {
		opts.FallbackDuration = segment.DefaultFallbackDuration
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Service{
		database: database,
		repos:    repos,
		store:    store,
		resolver: resolver,
		decoder:  asrun.NewDecoder(resolver),
		metrics:  m,
		locks:    newKeyLock(),
		opts:     opts,
	}
}

// IngestBatch ingests every file in refs. Files run concurrently up to the
// configured worker count; a failed file does not stop the batch. The only
// errors returned are for an empty or malformed batch.
func (s *Service) IngestBatch(ctx context.Context, refs []FileRef) (*BatchSummary, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyBatch
	}

	normalised := make([]FileRef, len(refs))
	for i, ref := range refs {
		if ref.Bucket == "" {
			ref.Bucket = s.opts.DefaultBucket
		}
		if ref.Bucket == "" || ref.Key == "" {
			return nil, fmt.Errorf("file %d: %w", i, ErrInvalidFileRef)
		}
		normalised[i] = ref
	}

	results := make([]FileResult, len(normalised))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, ref := range normalised {
		g.Go(func() error {
			results[i] = s.IngestFile(gctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	summary := &BatchSummary{Files: make([]FileResult, 0, len(results))}
	for _, r := range results {
		summary.add(r)
	}

	logger.Log.Info().
		Int("files", len(results)).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("broadcasts_created", summary.BroadcastsCreated).
		Int("programs_matched", summary.ProgramsMatched).
		Msg("Batch ingestion complete")

	return summary, nil
}

// IngestFile ingests a single AS-RUN object. The outcome, including any
// failure, is reported in the result.
func (s *Service) IngestFile(ctx context.Context, ref FileRef) (result FileResult) {
	started := time.Now()
	if ref.Bucket == "" {
		ref.Bucket = s.opts.DefaultBucket
	}
	result = FileResult{Bucket: ref.Bucket, Key: ref.Key}

	defer func() {
		s.metrics.RecordFile(string(result.Status), time.Since(started))
	}()

	info, err := asrun.ParseFilename(ref.Key)
	if err != nil {
		logger.Log.Warn().Str("key", ref.Key).Msg("Skipping object with unrecognised filename")
		return s.skip(result, ReasonInvalidFilename)
	}
	if !s.resolver.Known(info.Region) {
		logger.Log.Warn().
			Str("key", ref.Key).
			Str("region", info.Region).
			Msg("Skipping file with unknown region")
		return s.skip(result, ReasonUnknownRegion)
	}

	if !s.opts.Reprocess {
		if _, err := s.repos.LogFiles.GetByKey(ctx, ref.Key); err == nil {
			logger.Log.Info().Str("key", ref.Key).Msg("Skipping already processed file")
			return s.skip(result, ReasonAlreadyProcessed)
		} else if !db.IsNotFound(err) {
			return s.fail(result, fmt.Errorf("failed to check log file reference: %w", err))
		}
	}

	text, err := s.store.GetObject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to fetch object: %w", err))
	}

	data := s.decoder.Decode(text, info.Region)
	s.metrics.RecordLines(data.Stats.Decoded, data.Stats.BlankLines, data.Stats.ShortLines,
		data.Stats.FailedLines, data.Stats.MalformedTimestamps)

	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to load catalog: %w", err))
	}

	ends := segment.NewEndResolver(data, s.opts.FallbackDuration)
	target := slot{channel: info.Channel, region: data.Zone.Code}
	var firstDay *uuid.UUID

	for _, program := range programs {
		if err := ctx.Err(); err != nil {
			return s.fail(result, err)
		}

		matching := asrun.Match(data.Programs, program.Keyword)
		if len(matching) == 0 {
			continue
		}
		result.ProgramsMatched++

		segments := segment.Resolve(segment.Build(matching, s.opts.MaxGap), ends, program.Keyword)
		for _, seg := range segments {
			if err := ctx.Err(); err != nil {
				return s.fail(result, err)
			}

			day, created, err := s.persistSegment(ctx, program, seg, target)
			if err != nil {
				return s.fail(result, err)
			}
			if firstDay == nil {
				id := day.ID
				firstDay = &id
			}
			if created == nil {
				result.SegmentsSkipped++
				s.metrics.RecordSegmentSkipped("overlap")
				continue
			}
			result.BroadcastsCreated++
			s.metrics.RecordBroadcastCreated(target.region, target.channel)
		}
	}

	if err := s.recordLogFile(ctx, ref, info, target.region, firstDay); err != nil {
		return s.fail(result, err)
	}

	result.Status = StatusProcessed
	logger.Log.Info().
		Str("key", ref.Key).
		Str("region", target.region).
		Str("channel", target.channel).
		Int("programs_matched", result.ProgramsMatched).
		Int("broadcasts_created", result.BroadcastsCreated).
		Int("segments_skipped", result.SegmentsSkipped).
		Dur("duration", time.Since(started)).
		Msg("File ingested")

	return result
}

// slot is the channel and region a file's broadcasts are written to
type slot struct {
	channel string
	region  string
}

// persistSegment writes one segment as a broadcast. It returns the segment's
// day and the created broadcast, which is nil when the interval overlaps an
// existing broadcast.
func (s *Service) persistSegment(ctx context.Context, program *models.Program, seg segment.Segment, target slot) (*models.Day, *models.Broadcast, error) {
	day, err := s.ensureDay(ctx, program.ID, seg.StartTime)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(day.ID.String() + "|" + target.channel + "|" + target.region)
	defer unlock()

	var created *models.Broadcast
	err = s.database.WithTransaction(ctx, func(tx *gorm.DB) error {
		broadcasts := s.repos.Broadcasts.WithTx(tx)

		existing, err := NewOverlapGuard(broadcasts).Conflict(ctx, day.ID, target.channel, target.region, seg.StartTime, seg.EndTime)
		if err != nil {
			return fmt.Errorf("failed to check overlap: %w", err)
		}
		if existing != nil {
			logger.Log.Info().
				Str("program", program.Name).
				Str("existing_id", existing.ID.String()).
				Time("start", seg.StartTime).
				Time("end", seg.EndTime).
				Msg("Skipping segment overlapping existing broadcast")
			return nil
		}

		broadcast := models.NewBroadcast(program.Name, day.ID, target.channel, target.region, seg.StartTime, seg.EndTime)
		if err := broadcasts.Create(ctx, broadcast); err != nil {
			return err
		}
		created = broadcast
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if created != nil {
		logger.Log.Debug().
			Str("broadcast_id", created.ID.String()).
			Str("program", program.Name).
			Time("start", created.StartTime).
			Time("end", created.EndTime).
			Str("end_source", seg.EndSource.String()).
			Msg("Broadcast created")
	}

	return day, created, nil
}

// ensureDay finds or creates the program's day for the UTC date of start
func (s *Service) ensureDay(ctx context.Context, programID uuid.UUID, start time.Time) (*models.Day, error) {
	date := start.UTC().Format(models.DateLayout)

	day, err := s.repos.Days.GetByProgramAndDate(ctx, programID, date)
	if err == nil {
		return day, nil
	}
	if !db.IsNotFound(err) {
		return nil, fmt.Errorf("failed to find day: %w", err)
	}

	day = models.NewDay(programID, start.UTC())
	if err := s.repos.Days.Create(ctx, day); err != nil {
		if !db.IsDuplicate(err) {
			return nil, err
		}
		// Created concurrently by another file
		day, err = s.repos.Days.GetByProgramAndDate(ctx, programID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to find day: %w", err)
		}
	}
	return day, nil
}

// recordLogFile creates the file's reference unless one already exists
func (s *Service) recordLogFile(ctx context.Context, ref FileRef, info asrun.FileInfo, regionCode string, dayID *uuid.UUID) error {
	logFile := models.NewLogFile(ref.Bucket, ref.Key, regionCode, info.Channel, info.DateString())
	logFile.DayID = dayID

	if err := s.repos.LogFiles.Create(ctx, logFile); err != nil && !db.IsDuplicate(err) {
		return err
	}
	return nil
}

// FindBroadcastAt returns the program's broadcast airing at instant. It
// never creates records.
func (s *Service) FindBroadcastAt(ctx context.Context, programID uuid.UUID, instant time.Time) (*models.Broadcast, error) {
	if _, err := s.repos.Programs.GetByID(ctx, programID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	broadcast, err := s.repos.Broadcasts.FindContaining(ctx, programID, instant)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrBroadcastNotFound
		}
		return nil, fmt.Errorf("failed to find broadcast: %w", err)
	}
	return broadcast, nil
}

// Billboards decodes the object at ref and returns the billboards that aired
// inside the windows of programs matching keyword
func (s *Service) Billboards(ctx context.Context, ref FileRef, keyword string) ([]*asrun.LogEntry, error) {
	if ref.Bucket == "" {
		ref.Bucket = s.opts.DefaultBucket
	}
	if ref.Bucket == "" || ref.Key == "" {
		return nil, ErrInvalidFileRef
	}

	info, err := asrun.ParseFilename(ref.Key)
	if err != nil {
		return nil, err
	}

	text, err := s.store.GetObject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object: %w", err)
	}

	return billboard.Associate(s.decoder.Decode(text, info.Region), keyword), nil
}

func (s *Service) skip(result FileResult, reason string) FileResult {
	result.Status = StatusSkipped
	result.Reason = reason
	return result
}

func (s *Service) fail(result FileResult, err error) FileResult {
	logger.Log.Error().
		Err(err).
		Str("key", result.Key).
		Msg("File ingestion failed")

	result.Status = StatusFailed
	result.Reason = err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Reason = "cancelled: " + err.Error()
	}
	return result
}
