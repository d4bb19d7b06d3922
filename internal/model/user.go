package model

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// roleRank orders roles by privilege; a higher rank includes the lower ones.
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	DisplayName  string     `db:"display_name" json:"displayName"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

// Identity is the authenticated caller as resolved from a token.
type Identity struct {
	UserID string
	Role   string
}

func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// HasRole reports whether role grants at least the privileges of required.
func HasRole(role, required string) bool {
	have, ok := roleRank[role]
	need, known := roleRank[required]
	if !ok || !known {
		return false
	}
	return have >= need
}
