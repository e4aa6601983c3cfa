package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/errs"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

func (s *Service) GetSyncState(ctx context.Context, tenantID string) (ports.SyncState, error) {
	if ctx == nil {
		return ports.SyncState{}, errors.New("context is required")
	}
	return s.syncStates.Get(ctx, strings.TrimSpace(tenantID))
}

// SetSyncEnabled flips polling for one tenant, creating the sync row if the
// tenant was never polled before.
func (s *Service) SetSyncEnabled(ctx context.Context, tenantID string, enabled bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return errors.New("tenant id is required")
	}
	return s.syncStates.Upsert(ctx, tenantID, ports.SyncStatePatch{Enabled: &enabled})
}

func (s *Service) ListEnabledTenants(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.syncStates.ListEnabledTenants(ctx)
}

// IsConfigured reports whether the tenant has a labeler credential.
func (s *Service) IsConfigured(ctx context.Context, tenantID string) (bool, error) {
	if ctx == nil {
		return false, errors.New("context is required")
	}

	cred, err := s.creds.Get(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return false, errs.Wrap(err, "resolve credential")
	}
	return cred != nil, nil
}

// ListEmissions exposes the audit trail, optionally filtered by status.
func (s *Service) ListEmissions(ctx context.Context, tenantID string, status string) ([]ports.EmittedEventRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.audits.ListByStatus(ctx, strings.TrimSpace(tenantID), status)
}

// CheckLabelerHealth probes the tenant's labeler.
func (s *Service) CheckLabelerHealth(ctx context.Context, tenantID string) (*ozone.HealthResponse, error) {
	client, err := s.clientFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return client.Health(ctx)
}

// QuerySubjectStatuses pages over the labeler's subject review statuses,
// for moderator tooling that needs the labeler-side view of a subject.
func (s *Service) QuerySubjectStatuses(ctx context.Context, tenantID string, params ozone.QueryStatusesParams) (*ozone.QueryStatusesResponse, error) {
	client, err := s.clientFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return client.QueryStatuses(ctx, params)
}

func (s *Service) clientFor(ctx context.Context, tenantID string) (OzoneClient, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cred, err := s.creds.Get(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return nil, errs.Wrap(err, "resolve credential")
	}
	if cred == nil {
		return nil, fmt.Errorf("%w: tenant %s", domainbridge.ErrNotConfigured, tenantID)
	}
	return s.newClient(*cred)
}
