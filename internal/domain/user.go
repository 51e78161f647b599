package domain

import "fmt"

// Role is the access level of a user account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleRep   Role = "rep"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRep
}

// ParseRole converts a raw role string
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User represents an account on the tracker.
// Password is compared as plaintext; an empty password means the account has none
// and can never log in.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Password string `json:"password,omitempty"`
}

// IsAdmin reports whether the user holds the administrator role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public returns a copy without the password
func (u User) Public() User {
	u.Password = ""
	return u
}

// UserPatch carries a partial update; nil fields are left unchanged.
// A non-nil empty Password is also treated as "leave unchanged".
type UserPatch struct {
	Username *string
	Name     *string
	Role     *Role
	Password *string
}
