package models

import (
	"time"

	"github.com/google/uuid"
)

// Day groups one program's broadcasts on one calendar date
type Day struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	ProgramID uuid.UUID `json:"program_id" gorm:"type:text;not null;column:program_id" validate:"required"`
	Date      string    `json:"date" gorm:"type:text;not null;column:date" validate:"required"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewDay creates a new Day for the calendar date of t (in t's location)
func NewDay(programID uuid.UUID, t time.Time) *Day {
	return &Day{
		ID:        uuid.New(),
		ProgramID: programID,
		Date:      t.Format(DateLayout),
		CreatedAt: time.Now().UTC(),
	}
}
