package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/errs"
	"modbridge/internal/ports"
)

// ListMappings returns the tenant's stored rows only; an empty result means
// the tenant runs on defaults.
func (s *Service) ListMappings(ctx context.Context, tenantID string) ([]ports.LabelMapping, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.mappings.List(ctx, strings.TrimSpace(tenantID))
}

func (s *Service) UpsertMapping(ctx context.Context, mapping ports.LabelMapping) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}
	return s.mappings.Upsert(ctx, mapping)
}

func (s *Service) DeleteMapping(ctx context.Context, tenantID string, policyType string, labelValue string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(tenantID) == "" {
		return errors.New("tenant id is required")
	}
	return s.mappings.Delete(ctx, tenantID, policyType, labelValue)
}

// ImportMappings bulk-upserts seed rows inside one transaction.
func (s *Service) ImportMappings(ctx context.Context, tenantID string, rows []ports.LabelMapping) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}

	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return errors.New("tenant id is required")
	}

	for i := range rows {
		rows[i].TenantID = tenantID
		if err := validateMapping(rows[i]); err != nil {
			return errs.Wrapf(err, "mapping %d", i)
		}
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, row := range rows {
			if err := s.mappings.Upsert(txCtx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResolveMappings returns the effective table: the tenant's rows, or the
// frozen defaults when the tenant has none.
func (s *Service) ResolveMappings(ctx context.Context, tenantID string) ([]domainbridge.Mapping, error) {
	rows, err := s.ListMappings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	custom := make([]domainbridge.Mapping, 0, len(rows))
	for _, row := range rows {
		custom = append(custom, domainbridge.Mapping{
			PolicyType: row.PolicyType,
			LabelValue: row.LabelValue,
			Direction:  domainbridge.Direction(row.Direction),
		})
	}
	return domainbridge.EffectiveMappings(custom), nil
}

// PoliciesForLabels translates inbound label values to policy types using
// the tenant's effective mappings.
func (s *Service) PoliciesForLabels(ctx context.Context, tenantID string, labels []string) ([]string, error) {
	mappings, err := s.ResolveMappings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return domainbridge.LabelsToPolicies(mappings, labels), nil
}

// LabelsForPolicy translates one policy type to the label values to emit.
func (s *Service) LabelsForPolicy(ctx context.Context, tenantID string, policyType string) ([]string, error) {
	mappings, err := s.ResolveMappings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return domainbridge.PolicyToLabels(mappings, policyType), nil
}

func validateMapping(mapping ports.LabelMapping) error {
	if strings.TrimSpace(mapping.TenantID) == "" {
		return errors.New("tenant id is required")
	}
	if strings.TrimSpace(mapping.PolicyType) == "" {
		return errors.New("policy type is required")
	}
	if strings.TrimSpace(mapping.LabelValue) == "" {
		return errors.New("label value is required")
	}
	if !domainbridge.ValidDirection(domainbridge.Direction(mapping.Direction)) {
		return fmt.Errorf("invalid mapping direction %q", mapping.Direction)
	}
	return nil
}
