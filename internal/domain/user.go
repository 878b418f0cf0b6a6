package domain

import "time"

// Role enumerates actor roles. Role is fixed for the session and decides
// which ticket operations are authorized.
type Role string

const (
	RoleUser     Role = "USER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole maps a raw string onto a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleEmployee, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// User is the domain model for every account: submitters, employees and
// administrators are distinguished by Role alone.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
