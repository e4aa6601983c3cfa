package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"modbridge/internal/bootstrap/logging"
	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/errs"
	"modbridge/internal/metrics"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
	bridgesvc "modbridge/internal/usecase/bridge"
)

const reviewQueueSource = "external-labeler"

// Poller is the slice of the bridge service the scheduler drives.
type Poller interface {
	ListEnabledTenants(ctx context.Context) ([]string, error)
	PollEvents(ctx context.Context, tenantID string) (bridgesvc.PollResult, error)
	ClassifyEvent(event ozone.Event) bridgesvc.ClassifiedEvent
	PoliciesForLabels(ctx context.Context, tenantID string, labels []string) ([]string, error)
}

// Config is the full option set of the poller; there is nothing dynamic.
type Config struct {
	Interval time.Duration
	Enabled  bool
}

// Scheduler is the long-running supervisor that drives per-tenant polls and
// routes qualifying events to the review queue. Tenants and their events
// are processed sequentially; cursor advance presumes in-order consumption.
type Scheduler struct {
	cfg     Config
	bridge  Poller
	queue   ports.ReviewQueue
	metrics metrics.Metrics
	now     func() time.Time
}

func New(cfg Config, bridge Poller, queue ports.ReviewQueue, m metrics.Metrics) *Scheduler {
	if m == nil {
		m = metrics.Noop{}
	}
	return &Scheduler{
		cfg:     cfg,
		bridge:  bridge,
		queue:   queue,
		metrics: m,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled. When polling is disabled it returns
// immediately. Inner errors are logged and never terminate the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "scheduler"))
	if !s.cfg.Enabled {
		logging.Info(logCtx, "labeler polling disabled, scheduler not starting")
		return nil
	}

	logging.Info(logCtx, "scheduler started", slog.Duration("interval", s.cfg.Interval))
	for {
		s.runCycle(logCtx)

		select {
		case <-ctx.Done():
			logging.Info(logCtx, "scheduler stopped")
			return nil
		case <-time.After(s.cfg.Interval):
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	tenants, err := s.bridge.ListEnabledTenants(ctx)
	if err != nil {
		logging.Error(ctx, "list enabled tenants failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	for _, tenantID := range tenants {
		// Cancellation is checked between tenants; the in-flight tenant
		// always drains its event loop.
		if ctx.Err() != nil {
			return
		}
		s.pollTenant(ctx, tenantID)
	}
	s.metrics.IncPollCycles()
}

func (s *Scheduler) pollTenant(ctx context.Context, tenantID string) {
	logCtx := logging.WithAttrs(ctx, slog.String("tenant_id", tenantID))

	result, err := s.bridge.PollEvents(ctx, tenantID)
	if err != nil {
		s.metrics.IncPollErrors(tenantID)
		logging.Error(logCtx, "poll labeler events failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	for _, event := range result.Events {
		// The cursor already covers this event; a processing failure is a
		// logged skip, never a rewind.
		s.processEvent(logCtx, tenantID, event)
	}
}

func (s *Scheduler) processEvent(ctx context.Context, tenantID string, event ozone.Event) {
	classified := s.bridge.ClassifyEvent(event)
	if classified.Category == domainbridge.CategoryNone {
		logging.Debug(ctx, "unhandled event type, skipping",
			slog.Int64("event_id", event.ID),
			slog.String("event_type", event.Event.Type),
		)
		return
	}
	s.metrics.IncEventsIngested(string(classified.Category))

	if classified.SubjectDID == "" {
		logging.Warn(ctx, "event has no extractable subject did, skipping",
			slog.Int64("event_id", event.ID),
		)
		return
	}

	var reason string
	var policyIDs []string
	switch classified.Category {
	case domainbridge.CategoryReport:
		reason = "Report received from external labeler"
	case domainbridge.CategoryLabel:
		reason = "Labels applied by external labeler: " + strings.Join(classified.Labels, ", ")
		policies, err := s.bridge.PoliciesForLabels(ctx, tenantID, classified.Labels)
		if err != nil {
			logging.Warn(ctx, "resolve policies for labels failed",
				slog.Int64("event_id", event.ID),
				slog.Any("err", errs.Loggable(err)),
			)
		} else {
			policyIDs = policies
		}
	case domainbridge.CategoryEscalate:
		reason = "Escalated from external labeler"
	case domainbridge.CategoryTakedown, domainbridge.CategoryComment:
		logging.Info(ctx, "recorded labeler event",
			slog.Int64("event_id", event.ID),
			slog.String("category", string(classified.Category)),
			slog.String("subject_did", classified.SubjectDID),
		)
		return
	default:
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error(ctx, "marshal event payload failed",
			slog.Int64("event_id", event.ID),
			slog.Any("err", errs.Loggable(err)),
		)
		return
	}

	item := ports.ReviewQueueItem{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		Payload:       payload,
		CreatedAt:     s.now().UTC().Format(time.RFC3339Nano),
		Source:        reviewQueueSource,
		Reason:        reason,
		CorrelationID: fmt.Sprintf("ozone-event-%d", event.ID),
		PolicyIDs:     policyIDs,
	}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		s.metrics.IncEnqueueFailures(tenantID)
		logging.Error(ctx, "enqueue review item failed",
			slog.Int64("event_id", event.ID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
