package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditEvent struct {
	Id           uuid.UUID
	TenantId     *uuid.UUID
	UserId       *uuid.UUID
	Action       string
	ResourceType *string
	ResourceId   *uuid.UUID
	IpAddress    string
	UserAgent    string
	CreatedAt    time.Time
}
