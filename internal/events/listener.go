// Package events ingests AS-RUN files announced by Cloud Storage Pub/Sub
// notifications.
package events

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/stwalsh4118/asrun/internal/asrun"
	"github.com/stwalsh4118/asrun/internal/ingest"
	"github.com/stwalsh4118/asrun/internal/logger"
)

// Ingester ingests a single file
type Ingester interface {
	IngestFile(ctx context.Context, ref ingest.FileRef) ingest.FileResult
}

// Listener receives object notifications from a subscription and ingests
// each AS-RUN object as a one-file batch
type Listener struct {
	subscription *pubsub.Subscription
	ingester     Ingester
}

// NewListener creates a listener on subscriptionID
func NewListener(client *pubsub.Client, subscriptionID string, ingester Ingester) *Listener {
	return &Listener{
		subscription: client.Subscription(subscriptionID),
		ingester:     ingester,
	}
}

// Listen blocks receiving messages until ctx is cancelled
func (l *Listener) Listen(ctx context.Context) error {
	logger.Log.Info().
		Str("subscription", l.subscription.ID()).
		Msg("Listening for storage notifications")

	err := l.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
		if Handle(msgCtx, l.ingester, msg.Data, msg.Attributes) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}
	return nil
}

// Handle processes one message and reports whether it should be acked.
// Messages that can never succeed are acked so they are not redelivered;
// only failed ingestions are retried.
func Handle(ctx context.Context, ingester Ingester, data []byte, attrs map[string]string) bool {
	if eventType := attrs[attrEventType]; eventType != "" && eventType != EventObjectFinalize {
		logger.Log.Debug().Str("event_type", eventType).Msg("Ignoring storage event")
		return true
	}

	n, err := ParseNotification(data)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Dropping unreadable notification")
		return true
	}

	if !asrun.IsLogFilename(n.Name) {
		logger.Log.Debug().
			Str("bucket", n.Bucket).
			Str("name", n.Name).
			Msg("Ignoring non AS-RUN object")
		return true
	}

	result := ingester.IngestFile(ctx, ingest.FileRef{Bucket: n.Bucket, Key: n.Name})
	if result.Status == ingest.StatusFailed {
		logger.Log.Warn().
			Str("bucket", n.Bucket).
			Str("name", n.Name).
			Str("reason", result.Reason).
			Msg("Ingestion failed, message will be redelivered")
		return false
	}
	return true
}
