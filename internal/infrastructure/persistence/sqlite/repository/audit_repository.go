package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"modbridge/internal/errs"
	"modbridge/internal/infrastructure/persistence/sqlite/model"
	"modbridge/internal/ports"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertPending writes the request-side audit row before any network call
// and returns the generated id. The row is never deleted by the bridge.
func (r *AuditRepository) InsertPending(ctx context.Context, record ports.EmittedEventRecord) (string, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return "", err
	}

	row := model.EmittedEvent{
		ID:                    uuid.NewString(),
		TenantID:              record.TenantID,
		EventType:             record.EventType,
		SubjectDID:            record.SubjectDID,
		SubjectURI:            record.SubjectURI,
		PlatformActionID:      record.PlatformActionID,
		PlatformCorrelationID: record.PlatformCorrelationID,
		Status:                ports.EmissionStatusPending,
		RetryCount:            0,
		CreatedAt:             nowUTCString(),
	}
	if err := db.Create(&row).Error; err != nil {
		return "", errs.Wrap(err, "insert pending emission")
	}
	return row.ID, nil
}

func (r *AuditRepository) MarkSuccess(ctx context.Context, id string, responseJSON string) error {
	return r.mark(ctx, id, map[string]any{
		"status":            ports.EmissionStatusSuccess,
		"external_response": responseJSON,
	})
}

func (r *AuditRepository) MarkRetryable(ctx context.Context, id string, errorMessage string) error {
	return r.mark(ctx, id, map[string]any{
		"status": ports.EmissionStatusRetryableError,
		"error":  errorMessage,
	})
}

func (r *AuditRepository) mark(ctx context.Context, id string, updates map[string]any) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.EmittedEvent{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update emission status")
	}
	if result.RowsAffected == 0 {
		return ports.ErrEmittedEventNotFound
	}
	return nil
}

func (r *AuditRepository) ListByStatus(ctx context.Context, tenantID string, status string) ([]ports.EmittedEventRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.EmittedEvent{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []model.EmittedEvent
	if err := query.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query emissions")
	}

	items := make([]ports.EmittedEventRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EmittedEventRecord{
			ID:                    row.ID,
			TenantID:              row.TenantID,
			EventType:             row.EventType,
			SubjectDID:            row.SubjectDID,
			SubjectURI:            row.SubjectURI,
			PlatformActionID:      row.PlatformActionID,
			PlatformCorrelationID: row.PlatformCorrelationID,
			ExternalResponse:      row.ExternalResponse,
			Status:                row.Status,
			Error:                 row.Error,
			RetryCount:            row.RetryCount,
			CreatedAt:             row.CreatedAt,
		})
	}
	return items, nil
}
