package models

import "encoding/json"

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AdminUsername is the seeded account; it cannot be deleted.
const AdminUsername = "admin"

// User is an authorization principal. The stored permission set gates view
// access for regular users; admins bypass it entirely.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"not null;default:user"`
	// JSON-encoded list of view identifiers, e.g. ["live","history"]
	Permissions string `json:"-" gorm:"not null;default:'[]'"`
}

// PermissionList decodes the stored permission set. A corrupt value is
// treated as an empty set rather than an error.
func (u User) PermissionList() []string {
	var perms []string
	if err := json.Unmarshal([]byte(u.Permissions), &perms); err != nil {
		return []string{}
	}
	if perms == nil {
		return []string{}
	}
	return perms
}

// SetPermissions encodes perms into the stored representation.
func (u *User) SetPermissions(perms []string) {
	if perms == nil {
		perms = []string{}
	}
	encoded, _ := json.Marshal(perms)
	u.Permissions = string(encoded)
}

// Profile is the client-facing projection of a User.
type Profile struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Profile builds the projection served by the auth and admin endpoints.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: u.PermissionList(),
	}
}
