// Package authroles maps identity provider groups to admin roles.
package authroles

import (
	"strings"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

var _ ports.RoleMapper = GroupMapper{}

// GroupMapper grants admin to members of any AdminGroups and user (staff) to
// members of any UserGroups. Group names compare case-insensitively.
// Everyone else is a guest and cannot reach the admin pages.
type GroupMapper struct {
	AdminGroups []string
	UserGroups  []string
}

// Map returns the strongest role the groups grant.
func (m GroupMapper) Map(groups []string) domainauth.Role {
	switch {
	case anyMember(groups, m.AdminGroups):
		return domainauth.RoleAdmin
	case anyMember(groups, m.UserGroups):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

func anyMember(groups, allowed []string) bool {
	for _, g := range groups {
		for _, a := range allowed {
			if a != "" && strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(a)) {
				return true
			}
		}
	}
	return false
}
