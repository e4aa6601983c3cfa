package ports

import (
	"context"
	"encoding/json"
)

// ReviewQueueItem is what the bridge hands to the platform review queue for
// each qualifying inbound event.
type ReviewQueueItem struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     string          `json:"createdAt"`
	Source        string          `json:"source"`
	Reason        string          `json:"reason"`
	CorrelationID string          `json:"correlationId"`
	PolicyIDs     []string        `json:"policyIds"`
}

// ReviewQueue is fire-and-forget from the bridge's perspective: an Enqueue
// error is a per-event failure, never a reason to rewind the poll cursor.
type ReviewQueue interface {
	Enqueue(ctx context.Context, item ReviewQueueItem) error
}
