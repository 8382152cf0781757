package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GCS notification event types
const (
	EventObjectFinalize = "OBJECT_FINALIZE"
	attrEventType       = "eventType"
)

// ErrInvalidNotification is returned for a payload without a bucket or name
var ErrInvalidNotification = errors.New("invalid storage notification")

// Notification is the JSON payload of a Cloud Storage Pub/Sub notification
type Notification struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Bucket      string `json:"bucket"`
	Generation  string `json:"generation"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
	TimeCreated string `json:"timeCreated"`
}

// ParseNotification decodes a notification payload
func ParseNotification(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if n.Bucket == "" || n.Name == "" {
		return Notification{}, fmt.Errorf("%w: missing bucket or name", ErrInvalidNotification)
	}
	return n, nil
}
