package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/models"
)

// BroadcastStore is the query OverlapGuard needs from persistence
type BroadcastStore interface {
	FindOverlapping(ctx context.Context, dayID uuid.UUID, channel, region string, start, end time.Time) (*models.Broadcast, error)
}

// OverlapGuard rejects intervals that intersect an existing broadcast on the
// same day, channel and region
type OverlapGuard struct {
	store BroadcastStore
}

// NewOverlapGuard creates a guard over store
func NewOverlapGuard(store BroadcastStore) *OverlapGuard {
	return &OverlapGuard{store: store}
}

// Conflict returns the existing broadcast that [start, end) overlaps, or nil
func (g *OverlapGuard) Conflict(ctx context.Context, dayID uuid.UUID, channel, region string, start, end time.Time) (*models.Broadcast, error) {
	existing, err := g.store.FindOverlapping(ctx, dayID, channel, region, start, end)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

// HasOverlap reports whether [start, end) intersects an existing broadcast
func (g *OverlapGuard) HasOverlap(ctx context.Context, dayID uuid.UUID, channel, region string, start, end time.Time) (bool, error) {
	existing, err := g.Conflict(ctx, dayID, channel, region, start, end)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
