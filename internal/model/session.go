package model

import "github.com/google/uuid"

// Session identifies the authenticated caller of a service operation.
type Session struct {
	AccountID uuid.UUID
}
