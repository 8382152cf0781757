package ingest

import "errors"

// Custom ingestion errors
var (
	// ErrEmptyBatch indicates a batch with no files
	ErrEmptyBatch = errors.New("batch contains no files")

	// ErrInvalidFileRef indicates a file reference without a bucket or key
	ErrInvalidFileRef = errors.New("file reference requires a bucket and key")

	// ErrBroadcastNotFound indicates no broadcast contains the requested instant
	ErrBroadcastNotFound = errors.New("broadcast not found")

	// ErrProgramNotFound indicates the requested catalog program does not exist
	ErrProgramNotFound = errors.New("program not found")
)

// IsEmptyBatch checks if the error is an empty batch error
func IsEmptyBatch(err error) bool {
	return errors.Is(err, ErrEmptyBatch)
}

// IsInvalidFileRef checks if the error is an invalid file reference error
func IsInvalidFileRef(err error) bool {
	return errors.Is(err, ErrInvalidFileRef)
}

// IsBroadcastNotFound checks if the error is a broadcast not found error
func IsBroadcastNotFound(err error) bool {
	return errors.Is(err, ErrBroadcastNotFound)
}

// IsProgramNotFound checks if the error is a program not found error
func IsProgramNotFound(err error) bool {
	return errors.Is(err, ErrProgramNotFound)
}
