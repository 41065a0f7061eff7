package domain

import (
	"strings"
	"time"
)

// PermissionAll grants every capability.
const PermissionAll = "*"

// Role is the snapshot of a role embedded in a User at login time.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// User models an authenticated console operator. It is received as a full
// snapshot at login and never mutated afterwards.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone,omitempty"`
	Role          Role      `json:"role"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy so readers cannot alias the store's snapshot.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Role.Permissions = append([]string(nil), u.Role.Permissions...)
	return &c
}

// Account is the directory-side record behind a User.
type Account struct {
	ID               string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Phone            string
	RoleName         string
	FederatedSubject string
	IsActive         bool
	EmailVerified    bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Snapshot builds the User handed out at login, embedding role.
func (a *Account) Snapshot(role Role) *User {
	return &User{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
		Role: Role{
			Name:        role.Name,
			Permissions: append([]string(nil), role.Permissions...),
		},
		IsActive:      a.IsActive,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ValidatePermission checks the grant grammar: either "*" or exactly two
// non-empty colon separated segments.
func ValidatePermission(p string) bool {
	if p == PermissionAll {
		return true
	}
	parts := strings.Split(p, ":")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}
