package domain

import "time"

// Role is the authorisation tier of an identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAuditor Role = "auditor"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// DefaultRole is assigned to self-registered accounts.
const DefaultRole = RoleUser

// ValidRoles lists every role an identity may hold.
var ValidRoles = []Role{RoleAdmin, RoleAuditor, RoleManager, RoleUser}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User is the stored identity. PasswordHash never leaves the service layer:
// it is excluded from JSON and every response type omits it.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Principal is the per-request projection of a User attached by the
// authentication middleware.
type Principal struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
}

// Principal returns the sanitized request-scoped view of u.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
