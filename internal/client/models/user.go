// Package models defines the records the Aither client persists: user
// profiles, chat sessions with their messages, the global config and the
// backup bundle. JSON field names match the layout the browser client kept in
// local storage so backups from either side can be exchanged.
package models

import "strings"

// Role is the stored authorization level of a profile.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// UserProfile is one entry of the user registry.
type UserProfile struct {
	ID            string `json:"id"`
	Email         string `json:"userEmail"`
	DisplayName   string `json:"userName"`
	UserAvatar    string `json:"userAvatarUrl"`
	AIAvatar      string `json:"aiAvatarUrl"`
	PIN           string `json:"pin"`
	SetupComplete bool   `json:"isInitialSetupDone"`
	Role          Role   `json:"role,omitempty"`
}

// IsOwner reports whether the profile may use the administrative surface.
func (u UserProfile) IsOwner() bool {
	return u.Role == RoleOwner
}

// NormalizeEmail trims surrounding space and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
