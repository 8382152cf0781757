package models

// Broadcast status constants
const (
	BroadcastStatusPending    = "pending"
	BroadcastStatusProcessing = "processing"
	BroadcastStatusComplete   = "complete"
	BroadcastStatusFailed     = "failed"
)

// DateLayout is the storage format of calendar dates
const DateLayout = "2006-01-02"
