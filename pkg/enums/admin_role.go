package enums

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// AdminRole is the role carried by admin API tokens.
type AdminRole string

const (
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleViewer AdminRole = "viewer"
)

var validAdminRoles = []AdminRole{AdminRoleAdmin, AdminRoleViewer}

func (r AdminRole) String() string { return string(r) }

func (r AdminRole) IsValid() bool { return lo.Contains(validAdminRoles, r) }

// CanWrite reports whether the role may change data.
func (r AdminRole) CanWrite() bool { return r == AdminRoleAdmin }

func ParseAdminRole(value string) (AdminRole, error) {
	candidate := AdminRole(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid admin role %q", value)
}
