package model

import "time"

// Role is the closed set of operator roles. Hard deletes are gated on
// RoleAdmin.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleCashier    Role = "CASHIER"
	RoleAccountant Role = "ACCOUNTANT"
	RoleTeacher    Role = "TEACHER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleAccountant, RoleTeacher:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanDelete reports whether the user may hard-delete ledger records.
func (u *User) CanDelete() bool {
	return u.Role == RoleAdmin
}
