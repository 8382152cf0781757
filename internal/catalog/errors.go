package catalog

import "errors"

// Custom catalog service errors
var (
	// ErrDuplicateProgramName indicates a program with the same name already exists
	ErrDuplicateProgramName = errors.New("program name already exists")

	// ErrEmptyKeyword indicates a keyword that would never match a title
	ErrEmptyKeyword = errors.New("keyword must not be empty")

	// ErrInvalidYear indicates a year outside the supported range
	ErrInvalidYear = errors.New("year must be 0 or between 1900 and 2100")

	// ErrProgramNotFound indicates the requested program does not exist
	ErrProgramNotFound = errors.New("program not found")

	// ErrDayNotFound indicates the requested day does not exist
	ErrDayNotFound = errors.New("day not found")
)

// IsDuplicateName checks if the error is a duplicate program name error
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateProgramName)
}

// IsValidation checks if the error is an input validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyKeyword) || errors.Is(err, ErrInvalidYear)
}

// IsProgramNotFound checks if the error is a program not found error
func IsProgramNotFound(err error) bool {
	return errors.Is(err, ErrProgramNotFound)
}

// IsDayNotFound checks if the error is a day not found error
func IsDayNotFound(err error) bool {
	return errors.Is(err, ErrDayNotFound)
}
