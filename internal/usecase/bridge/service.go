package bridge

import (
	"context"
	"time"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/metrics"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

// OzoneClient is the slice of the protocol client the service needs. The
// concrete *ozone.Client satisfies it; tests substitute stubs.
type OzoneClient interface {
	QueryEvents(ctx context.Context, params ozone.QueryEventsParams) (*ozone.QueryEventsResponse, error)
	EmitEvent(ctx context.Context, req ozone.EmitRequest) (*ozone.EmitResponse, error)
	QueryStatuses(ctx context.Context, params ozone.QueryStatusesParams) (*ozone.QueryStatusesResponse, error)
	Health(ctx context.Context) (*ozone.HealthResponse, error)
}

// ClientFactory builds a protocol client for one tenant credential.
type ClientFactory func(cred ports.TenantCredential) (OzoneClient, error)

// DefaultClientFactory wires the real XRPC client.
func DefaultClientFactory(cred ports.TenantCredential) (OzoneClient, error) {
	return ozone.NewClient(cred)
}

// Service is the bridge façade: outbound emissions, inbound polling,
// classification, and the mapping / sync-state CRUD. All operations are
// tenant scoped.
type Service struct {
	creds      ports.CredentialStore
	syncStates ports.SyncStateStore
	audits     ports.AuditStore
	mappings   ports.MappingStore
	uow        ports.UnitOfWork
	newClient  ClientFactory
	metrics    metrics.Metrics
	now        func() time.Time
}

func NewService(
	creds ports.CredentialStore,
	syncStates ports.SyncStateStore,
	audits ports.AuditStore,
	mappings ports.MappingStore,
	uow ports.UnitOfWork,
	newClient ClientFactory,
	m metrics.Metrics,
) *Service {
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Service{
		creds:      creds,
		syncStates: syncStates,
		audits:     audits,
		mappings:   mappings,
		uow:        uow,
		newClient:  newClient,
		metrics:    m,
		now:        time.Now,
	}
}

// PolicyRef names one platform policy behind an emission.
type PolicyRef struct {
	ID   string
	Name string
}

type EmitEventInput struct {
	TenantID              string
	EventType             string
	Labels                []string
	NegateLabels          []string
	Comment               *string
	SubjectDID            string
	SubjectURI            string
	PlatformActionID      string
	PlatformCorrelationID string
	Policies              []PolicyRef
	DurationInHours       *int64
}

// PollResult carries one page of the labeler event stream. NewCursor is
// empty when the response had no cursor.
type PollResult struct {
	Events    []ozone.Event
	NewCursor string
}

// ClassifiedEvent is the bridge-internal normalization of an inbound event.
type ClassifiedEvent struct {
	Category   domainbridge.Category
	Labels     []string
	Comment    *string
	SubjectDID string
	SubjectURI string
}

func (s *Service) nowUTCString() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
