package model

import "strings"

// Role represents user roles in the system
type Role struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privileges  []string `json:"privileges"`
}

// Role codes as constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultRoles defines the roles known to the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Manages users and products",
		Privileges:  PrivilegesFor(RoleAdmin),
	},
	{
		Code:        RoleUser,
		Name:        "User",
		Description: "Browses and maintains products",
		Privileges:  PrivilegesFor(RoleUser),
	},
}

// IsAdmin reports whether role names the admin role. Records written by older
// clients use "Admin", so the comparison ignores case.
func IsAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleAdmin)
}

// NormalizeRole maps any spelling of a known role to its canonical code.
// Unknown roles fall back to RoleUser.
func NormalizeRole(role string) string {
	if IsAdmin(role) {
		return RoleAdmin
	}
	return RoleUser
}
