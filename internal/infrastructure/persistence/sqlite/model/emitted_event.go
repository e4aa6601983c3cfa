package model

type EmittedEvent struct {
	ID                    string  `gorm:"column:id;type:text;primaryKey"`
	TenantID              string  `gorm:"column:tenant_id;type:text;not null;index:idx_emitted_events_tenant_status,priority:1"`
	EventType             string  `gorm:"column:event_type;type:text;not null"`
	SubjectDID            *string `gorm:"column:subject_did;type:text"`
	SubjectURI            *string `gorm:"column:subject_uri;type:text"`
	PlatformActionID      *string `gorm:"column:platform_action_id;type:text"`
	PlatformCorrelationID *string `gorm:"column:platform_correlation_id;type:text"`
	ExternalResponse      *string `gorm:"column:external_response;type:text"`
	Status                string  `gorm:"column:status;type:text;not null;default:PENDING;index:idx_emitted_events_tenant_status,priority:2"`
	Error                 *string `gorm:"column:error;type:text"`
	RetryCount            int     `gorm:"column:retry_count;not null;default:0"`
	CreatedAt             string  `gorm:"column:created_at;type:text;not null"`
}

func (EmittedEvent) TableName() string {
	return "emitted_events"
}
