package auth

const (
	RoleAdmin  = "admin"
	RoleMentor = "mentor"
)

const UserStatusActive = "active"

// ValidRole reports whether role is one the users table accepts.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMentor
}
