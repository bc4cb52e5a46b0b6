package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin     Role = "SUPER_ADMIN"
	RoleCompanyAdmin   Role = "COMPANY_ADMIN"
	RoleCompanyManager Role = "COMPANY_MANAGER"
	RoleClient         Role = "CLIENT"
	RoleFinalUser      Role = "FINAL_USER"
)

// ParseRole normalizes a role label; unknown labels map to RoleFinalUser.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleCompanyManager, RoleClient, RoleFinalUser:
		return r
	default:
		return RoleFinalUser
	}
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        Role      `json:"role"`
	CompanyID   int64     `json:"company_id,omitempty"` // 0 = no company profile
	Address     string    `json:"address"`
	Country     string    `json:"country"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor is the caller on whose behalf an operation runs.
type Actor struct {
	UserID    int64 `json:"user_id"`
	Role      Role  `json:"role"`
	CompanyID int64 `json:"company_id"`
}

// ActorFor builds the actor identity of a stored user.
func ActorFor(u User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, CompanyID: u.CompanyID}
}
