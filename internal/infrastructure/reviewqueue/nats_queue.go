package reviewqueue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"modbridge/internal/errs"
	"modbridge/internal/ports"
)

// NATSQueue publishes review-queue items to <subjectPrefix>.<tenantID>.
// The platform review-queue consumer subscribes on the other side.
type NATSQueue struct {
	conn          *nats.Conn
	subjectPrefix string
}

func NewNATSQueue(url string, subjectPrefix string) (*NATSQueue, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats url is required")
	}
	prefix := strings.TrimSpace(subjectPrefix)
	if prefix == "" {
		prefix = "moderation.review"
	}

	conn, err := nats.Connect(url, nats.Name("modbridge-review-queue"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return &NATSQueue{conn: conn, subjectPrefix: prefix}, nil
}

func (q *NATSQueue) Enqueue(ctx context.Context, item ports.ReviewQueueItem) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.TenantID == "" {
		return errors.New("tenant id is required")
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return errs.Wrap(err, "marshal review queue item")
	}
	if err := q.conn.Publish(q.subjectPrefix+"."+item.TenantID, payload); err != nil {
		return errs.Wrap(err, "publish review queue item")
	}
	// Flush so an enqueue failure surfaces here, not on a later publish.
	if err := q.conn.FlushWithContext(ctx); err != nil {
		return errs.Wrap(err, "flush review queue publish")
	}
	return nil
}

func (q *NATSQueue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}
