package model

import "github.com/google/uuid"

type Role string

const (
	RoleSubmitter  Role = "SUBMITTER"
	RoleCommission Role = "COMMISSION"
	RoleAdmin      Role = "ADMIN"
)

type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsSubmitter() bool {
	return p.Role == RoleSubmitter
}

func (p Principal) IsCommission() bool {
	return p.Role == RoleCommission
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
