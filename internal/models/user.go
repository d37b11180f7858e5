package models

import "time"

// Role is the ordinal RBAC level. Comparison is numeric: a subject satisfies a
// requirement iff its role value is greater than or equal to the required one.
// The numbering is load-bearing for every access check; do not renumber.
type Role int

const (
	RoleUser      Role = 1
	RoleModerator Role = 2
	RoleAdmin     Role = 3
)

// AtLeast reports whether the role satisfies the required ordinal level.
func (r Role) AtLeast(required Role) bool {
	return r >= required
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name onto its ordinal value.
func ParseRole(raw string) (Role, bool) {
	switch raw {
	case "user":
		return RoleUser, true
	case "moderator":
		return RoleModerator, true
	case "admin":
		return RoleAdmin, true
	default:
		return 0, false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Subject is the authenticated principal resolved from a presented credential.
// It is the unit every access check operates on.
type Subject struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
