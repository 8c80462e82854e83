package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent rows are append-only. There is no update or delete path.
type AuditEvent struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId     *uuid.UUID `gorm:"type:uuid;index"`
	UserId       *uuid.UUID `gorm:"type:uuid;index"`
	Action       string     `gorm:"type:varchar(100);not null;index"`
	ResourceType *string    `gorm:"type:varchar(50)"`
	ResourceId   *uuid.UUID `gorm:"type:uuid"`
	IpAddress    string     `gorm:"type:varchar(45)"`
	UserAgent    string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
