package ports

import (
	"context"
	"errors"
)

var (
	ErrSyncStateNotFound    = errors.New("sync state not found")
	ErrEmittedEventNotFound = errors.New("emitted event record not found")
)

// SyncState tracks per-tenant poll progress over the labeler event stream.
// Timestamps are RFC3339 strings, matching the rest of the persistence layer.
type SyncState struct {
	TenantID         string
	LastSyncedCursor *string
	LastSyncedAt     *string
	SyncEnabled      bool
	CreatedAt        string
	UpdatedAt        string
}

// SyncStatePatch updates only the fields that are non-nil.
type SyncStatePatch struct {
	Cursor   *string
	SyncedAt *string
	Enabled  *bool
}

type SyncStateStore interface {
	Get(ctx context.Context, tenantID string) (SyncState, error)
	// Upsert inserts a row when the tenant has none, otherwise applies the
	// patch. updated_at is bumped either way.
	Upsert(ctx context.Context, tenantID string, patch SyncStatePatch) error
	ListEnabledTenants(ctx context.Context) ([]string, error)
}

// LabelMapping is one tenant row of the policy/label translation table.
// Direction is one of INBOUND, OUTBOUND, BOTH.
type LabelMapping struct {
	TenantID   string
	PolicyType string
	LabelValue string
	Direction  string
	CreatedAt  string
}

type MappingStore interface {
	List(ctx context.Context, tenantID string) ([]LabelMapping, error)
	// Upsert inserts, or on (tenant_id, policy_type, label_value) conflict
	// updates direction only.
	Upsert(ctx context.Context, mapping LabelMapping) error
	Delete(ctx context.Context, tenantID string, policyType string, labelValue string) error
}

// Emission statuses. Pending is the initial state; the other two are terminal.
const (
	EmissionStatusPending        = "PENDING"
	EmissionStatusSuccess        = "SUCCESS"
	EmissionStatusRetryableError = "RETRYABLE_ERROR"
)

// EmittedEventRecord is the audit row for one outbound emission attempt.
type EmittedEventRecord struct {
	ID                    string
	TenantID              string
	EventType             string
	SubjectDID            *string
	SubjectURI            *string
	PlatformActionID      *string
	PlatformCorrelationID *string
	ExternalResponse      *string
	Status                string
	Error                 *string
	RetryCount            int
	CreatedAt             string
}

type AuditStore interface {
	// InsertPending writes the request-side fields with status PENDING and
	// returns the generated record id.
	InsertPending(ctx context.Context, record EmittedEventRecord) (string, error)
	MarkSuccess(ctx context.Context, id string, responseJSON string) error
	MarkRetryable(ctx context.Context, id string, errorMessage string) error
	ListByStatus(ctx context.Context, tenantID string, status string) ([]EmittedEventRecord, error)
}
