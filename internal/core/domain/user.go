package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the coarse permission tag carried by a user and by its tokens.
type Role string

const (
	RoleUser   Role = "user"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Roles lists every assignable role.
var Roles = []Role{RoleUser, RoleDriver, RoleAdmin}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role, rejecting anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: role must be one of: user, driver, admin", ErrValidation)
	}
	return r, nil
}

// User is a directory record. PasswordHash never leaves the service boundary.
type User struct {
	UserID       string
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string `json:"-"`
	Role         Role
	EntryDate    time.Time
}

// UserPatch carries the profile fields that may change through a generic update.
// userId, role, passwordHash and entryDate are deliberately absent.
type UserPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
