package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository errors. Callers match these instead of driver errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrForeignKey   = errors.New("foreign key constraint violation")
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports a missing program, day, broadcast or log file
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports a unique constraint hit, e.g. a reused program name
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

// MapGormError translates GORM and SQLite failures into the errors above
func MapGormError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	// SQLite reports constraint failures only through the message text
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unique constraint") {
		return ErrDuplicate
	}
	if strings.Contains(errMsg, "foreign key constraint") {
		return ErrForeignKey
	}

	return err
}
