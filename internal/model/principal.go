package model

import (
	"strings"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "ADMIN"
	RoleAnalyst = "ANALYST"
	RoleViewer  = "VIEWER"
)

type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   string
	// Profile names the local state of a CLI caller that has no user id.
	Profile string
}

// LocalPrincipal is the caller of the command line tool.
func LocalPrincipal(profile string) Principal {
	return Principal{Role: RoleAdmin, Profile: profile}
}

func (p Principal) IsAdmin() bool {
	return strings.EqualFold(p.Role, RoleAdmin)
}

// CanRefresh reports whether the caller may trigger a refetch of the offer set.
func (p Principal) CanRefresh() bool {
	return p.IsAdmin() || strings.EqualFold(p.Role, RoleAnalyst)
}

// Owner is the key saved filter state is stored under.
func (p Principal) Owner() string {
	if p.UserID == uuid.Nil && p.Profile != "" {
		return p.Profile
	}
	return p.UserID.String()
}
