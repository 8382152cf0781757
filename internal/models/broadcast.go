package models

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is one aired instance of a program on a channel and region.
// StartTime and EndTime are UTC and form the half-open interval [start, end).
type Broadcast struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required"`
	StartTime time.Time `json:"start_time" gorm:"type:datetime;not null;column:start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" gorm:"type:datetime;not null;column:end_time" validate:"required"`
	Channel   string    `json:"channel" gorm:"type:text;not null;column:channel" validate:"required"`
	Region    string    `json:"region" gorm:"type:text;not null;column:region" validate:"required"`
	DayID     uuid.UUID `json:"day_id" gorm:"type:text;not null;column:day_id" validate:"required"`
	Status    string    `json:"status" gorm:"type:text;not null;default:pending;column:status" validate:"oneof=pending processing complete failed"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewBroadcast creates a pending Broadcast with generated UUID and timestamp
func NewBroadcast(name string, dayID uuid.UUID, channel, region string, start, end time.Time) *Broadcast {
	return &Broadcast{
		ID:        uuid.New(),
		Name:      name,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Channel:   channel,
		Region:    region,
		DayID:     dayID,
		Status:    BroadcastStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Overlaps reports whether [start, end) intersects the broadcast interval.
// Abutting intervals do not overlap.
func (b *Broadcast) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}

// Duration returns the broadcast length
func (b *Broadcast) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}
