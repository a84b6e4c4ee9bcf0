package model

import "github.com/google/uuid"

// Principal is the tenant context resolved from the access token.
// Every service call receives it explicitly; nothing reads ambient session state.
type Principal struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
}

func (p Principal) Valid() bool {
	return p.UserID != uuid.Nil && p.CompanyID != uuid.Nil
}
