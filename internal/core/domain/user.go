package domain

import "time"

// Role is a capability tag attached to a user and carried in access tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models a registered customer or administrator.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ShippingAddress string    `json:"shipping_address"`
	Roles           []Role    `json:"roles"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasRole reports whether the user has been granted role.
func (u *User) HasRole(role Role) bool {
	return HasRole(u.Roles, role)
}

// Principal is the identity attached to a request after credential
// verification or token parsing.
type Principal struct {
	Subject string
	Roles   []Role
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return HasRole(p.Roles, role)
}

// HasRole reports whether roles contains role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
