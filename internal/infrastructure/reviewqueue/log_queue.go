package reviewqueue

import (
	"context"
	"errors"
	"log/slog"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/ports"
)

// LogQueue is the fallback review queue when no broker is configured: items
// are logged and dropped. Useful for local runs and tests.
type LogQueue struct{}

func NewLogQueue() *LogQueue {
	return &LogQueue{}
}

func (q *LogQueue) Enqueue(ctx context.Context, item ports.ReviewQueueItem) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logging.Info(
		ctx,
		"review queue item (log sink)",
		slog.String("item_id", item.ID),
		slog.String("tenant_id", item.TenantID),
		slog.String("reason", item.Reason),
		slog.String("correlation_id", item.CorrelationID),
		slog.Any("policy_ids", item.PolicyIDs),
	)
	return nil
}
