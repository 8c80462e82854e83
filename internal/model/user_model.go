package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectId      string    `gorm:"type:varchar(255);uniqueIndex;not null"` // identity provider subject
	TenantId       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	EmailEncrypted []byte    `gorm:"type:bytea"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	LastActiveAt   time.Time
}

func (User) TableName() string {
	return "users"
}
