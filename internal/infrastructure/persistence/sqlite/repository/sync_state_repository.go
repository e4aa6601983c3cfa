package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"modbridge/internal/errs"
	"modbridge/internal/infrastructure/persistence/sqlite/model"
	"modbridge/internal/ports"
)

type SyncStateRepository struct {
	db *gorm.DB
}

func NewSyncStateRepository(db *gorm.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

func (r *SyncStateRepository) Get(ctx context.Context, tenantID string) (ports.SyncState, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.SyncState{}, err
	}

	var row model.SyncState
	if err := db.Where("tenant_id = ?", tenantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SyncState{}, ports.ErrSyncStateNotFound
		}
		return ports.SyncState{}, errs.Wrap(err, "query sync state")
	}
	return mapSyncState(row), nil
}

// Upsert inserts a fresh row for an unseen tenant, otherwise applies only
// the patch fields. updated_at is always bumped.
func (r *SyncStateRepository) Upsert(ctx context.Context, tenantID string, patch ports.SyncStatePatch) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := nowUTCString()

		var row model.SyncState
		err := tx.Where("tenant_id = ?", tenantID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := model.SyncState{
				TenantID:         tenantID,
				LastSyncedCursor: patch.Cursor,
				LastSyncedAt:     patch.SyncedAt,
				SyncEnabled:      true,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if patch.Enabled != nil {
				fresh.SyncEnabled = *patch.Enabled
			}
			if err := tx.Create(&fresh).Error; err != nil {
				return errs.Wrap(err, "insert sync state")
			}
			// gorm writes the column default (enabled) in place of a zero-value
			// false on Create, so an explicit disable is applied afterwards.
			if patch.Enabled != nil && !*patch.Enabled {
				if err := tx.Model(&model.SyncState{}).Where("tenant_id = ?", tenantID).Update("sync_enabled", false).Error; err != nil {
					return errs.Wrap(err, "insert sync state")
				}
			}
			return nil
		}
		if err != nil {
			return errs.Wrap(err, "query sync state")
		}

		updates := map[string]any{"updated_at": now}
		if patch.Cursor != nil {
			updates["last_synced_cursor"] = *patch.Cursor
		}
		if patch.SyncedAt != nil {
			updates["last_synced_at"] = *patch.SyncedAt
		}
		if patch.Enabled != nil {
			updates["sync_enabled"] = *patch.Enabled
		}
		if err := tx.Model(&model.SyncState{}).Where("tenant_id = ?", tenantID).Updates(updates).Error; err != nil {
			return errs.Wrap(err, "update sync state")
		}
		return nil
	})
}

func (r *SyncStateRepository) ListEnabledTenants(ctx context.Context) ([]string, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var tenants []string
	if err := db.Model(&model.SyncState{}).
		Where("sync_enabled = ?", true).
		Order("tenant_id asc").
		Pluck("tenant_id", &tenants).Error; err != nil {
		return nil, errs.Wrap(err, "list enabled tenants")
	}
	return tenants, nil
}

func mapSyncState(row model.SyncState) ports.SyncState {
	return ports.SyncState{
		TenantID:         row.TenantID,
		LastSyncedCursor: row.LastSyncedCursor,
		LastSyncedAt:     row.LastSyncedAt,
		SyncEnabled:      row.SyncEnabled,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
