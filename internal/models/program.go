package models

import (
	"time"

	"github.com/google/uuid"
)

// Program represents a catalog program matched against AS-RUN titles
type Program struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	Keyword   string    `json:"keyword" gorm:"type:text;not null;column:keyword" validate:"required,min=1"`
	Year      int       `json:"year" gorm:"type:integer;not null;default:0;column:year"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewProgram creates a new Program with generated UUID and timestamp
func NewProgram(name, keyword string, year int) *Program {
	return &Program{
		ID:        uuid.New(),
		Name:      name,
		Keyword:   keyword,
		Year:      year,
		CreatedAt: time.Now().UTC(),
	}
}
