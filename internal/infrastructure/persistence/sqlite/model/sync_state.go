package model

type SyncState struct {
	TenantID         string  `gorm:"column:tenant_id;type:text;primaryKey"`
	LastSyncedCursor *string `gorm:"column:last_synced_cursor;type:text"`
	LastSyncedAt     *string `gorm:"column:last_synced_at;type:text"`
	SyncEnabled      bool    `gorm:"column:sync_enabled;not null;default:1"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt        string  `gorm:"column:updated_at;type:text;not null"`
}

func (SyncState) TableName() string {
	return "event_sync_state"
}
