package model

// Privilege codes
const (
	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"
	PrivUserView      = "user:view"
	PrivUserCreate    = "user:create"
	PrivUserUpdate    = "user:update"
	PrivUserDelete    = "user:delete"
)

var (
	productPrivileges = []string{PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete}
	userPrivileges    = []string{PrivUserView, PrivUserCreate, PrivUserUpdate, PrivUserDelete}
)

// PrivilegesFor returns the privilege codes granted to a role.
// Every role manages products; only admins manage users.
func PrivilegesFor(role string) []string {
	out := append([]string(nil), productPrivileges...)
	if IsAdmin(role) {
		out = append(out, userPrivileges...)
	}
	return out
}

// HasPrivilege checks if role grants the privilege code
func HasPrivilege(role, code string) bool {
	for _, p := range PrivilegesFor(role) {
		if p == code {
			return true
		}
	}
	return false
}
