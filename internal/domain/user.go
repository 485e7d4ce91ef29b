package domain

import (
	"time"
)

// Role represents a user's privilege level
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Roles lists every valid role in ascending privilege order
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

// ParseRole returns the role named by s. Matching is exact.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// User represents a chat user known to the shop
type User struct {
	ID           int64     `json:"id" db:"id"`
	TelegramID   int64     `json:"telegram_id" db:"telegram_id"`
	Username     string    `json:"username" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// IsRegistered reports whether the profile has both contact fields filled
func (u *User) IsRegistered() bool {
	return u.Email != "" && u.Phone != ""
}

// IsAdmin reports whether the user may manage the catalog and see all orders
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the user may assign roles
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// UserField names a user attribute that may be edited directly
type UserField string

const (
	UserFieldUsername  UserField = "username"
	UserFieldFirstName UserField = "first_name"
	UserFieldEmail     UserField = "email"
	UserFieldPhone     UserField = "phone"
	UserFieldRole      UserField = "role"
)

// UserFields is the edit allow-list
var UserFields = []UserField{
	UserFieldUsername,
	UserFieldFirstName,
	UserFieldEmail,
	UserFieldPhone,
	UserFieldRole,
}

// ParseUserField returns the field named by s if it is on the allow-list
func ParseUserField(s string) (UserField, bool) {
	for _, f := range UserFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
