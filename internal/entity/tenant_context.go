package entity

import "github.com/google/uuid"

// TenantContext is the verified caller identity threaded through every
// service call. It is constructed once per request from validated token
// claims; services never read tenant or user ids from request bodies.
type TenantContext struct {
	TenantId  uuid.UUID
	UserId    uuid.UUID
	ClientIP  string
	UserAgent string
}
