package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	SubjectId      string
	TenantId       uuid.UUID
	EmailEncrypted []byte
	CreatedAt      time.Time
	LastActiveAt   time.Time
}
