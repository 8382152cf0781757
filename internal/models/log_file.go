package models

import (
	"time"

	"github.com/google/uuid"
)

// LogFile records that an AS-RUN object has been ingested
type LogFile struct {
	ID        uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	ObjectKey string     `json:"object_key" gorm:"type:text;not null;uniqueIndex;column:object_key" validate:"required"`
	Bucket    string     `json:"bucket" gorm:"type:text;not null;column:bucket"`
	DayID     *uuid.UUID `json:"day_id,omitempty" gorm:"type:text;column:day_id"`
	Region    string     `json:"region" gorm:"type:text;not null;column:region"`
	Channel   string     `json:"channel" gorm:"type:text;not null;column:channel"`
	LogDate   string     `json:"log_date" gorm:"type:text;not null;column:log_date"` // YYYY-MM-DD from the filename
	CreatedAt time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewLogFile creates a new LogFile with generated UUID and timestamp
func NewLogFile(bucket, key, region, channel, logDate string) *LogFile {
	return &LogFile{
		ID:        uuid.New(),
		ObjectKey: key,
		Bucket:    bucket,
		Region:    region,
		Channel:   channel,
		LogDate:   logDate,
		CreatedAt: time.Now().UTC(),
	}
}
