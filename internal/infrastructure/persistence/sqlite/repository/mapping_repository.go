package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"modbridge/internal/errs"
	"modbridge/internal/infrastructure/persistence/sqlite/model"
	"modbridge/internal/ports"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) List(ctx context.Context, tenantID string) ([]ports.LabelMapping, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.LabelMapping
	if err := db.Where("tenant_id = ?", tenantID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query label mappings")
	}

	items := make([]ports.LabelMapping, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.LabelMapping{
			TenantID:   row.TenantID,
			PolicyType: row.PolicyType,
			LabelValue: row.LabelValue,
			Direction:  row.Direction,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// Upsert inserts the mapping; on a (tenant_id, policy_type, label_value)
// conflict only direction changes.
func (r *MappingRepository) Upsert(ctx context.Context, mapping ports.LabelMapping) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.LabelMapping{
		TenantID:   mapping.TenantID,
		PolicyType: mapping.PolicyType,
		LabelValue: mapping.LabelValue,
		Direction:  mapping.Direction,
		CreatedAt:  nowUTCString(),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "policy_type"},
			{Name: "label_value"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"direction"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert label mapping")
	}
	return nil
}

func (r *MappingRepository) Delete(ctx context.Context, tenantID string, policyType string, labelValue string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.
		Where("tenant_id = ? AND policy_type = ? AND label_value = ?", tenantID, policyType, labelValue).
		Delete(&model.LabelMapping{}).Error; err != nil {
		return errs.Wrap(err, "delete label mapping")
	}
	return nil
}
