package model

type LabelMapping struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID   string `gorm:"column:tenant_id;type:text;not null;uniqueIndex:idx_label_mappings_identity,priority:1"`
	PolicyType string `gorm:"column:policy_type;type:text;not null;uniqueIndex:idx_label_mappings_identity,priority:2"`
	LabelValue string `gorm:"column:label_value;type:text;not null;uniqueIndex:idx_label_mappings_identity,priority:3"`
	Direction  string `gorm:"column:direction;type:text;not null"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
}

func (LabelMapping) TableName() string {
	return "label_mappings"
}
