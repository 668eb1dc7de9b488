package domain

import "time"

// User represents a system account
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         Role
	Status       Status
	Department   string
	Position     string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the subset of user fields safe to hand to callers.
// Credential material is never part of it.
type Identity struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Role       Role   `json:"role"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Redacted returns the caller-safe view of the user.
func (u *User) Redacted() *Identity {
	return &Identity{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		Email:      u.Email,
		Department: u.Department,
	}
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleSupervisor manages day-to-day records but not system administration
	RoleSupervisor Role = "supervisor"

	// RoleEmployee works on records, mostly limited to their own
	RoleEmployee Role = "employee"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

// Valid roles
var validRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleSupervisor: true,
	RoleEmployee:   true,
	RoleViewer:     true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// ParseRole converts a stored string into a Role. Unknown values fail;
// conversion happens at the storage boundary only.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// DisplayName returns the human-readable role name used by the UI shell.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "System Administrator"
	case RoleSupervisor:
		return "Supervisor"
	case RoleEmployee:
		return "Employee"
	case RoleViewer:
		return "Reviewer"
	default:
		return string(r)
	}
}

// Status represents an account's lifecycle state
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

var validStatuses = map[Status]bool{
	StatusActive:    true,
	StatusInactive:  true,
	StatusSuspended: true,
	StatusPending:   true,
}

// IsValid checks if the status is a valid status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// Message returns the user-facing text explaining why a non-active
// account cannot log in.
func (s Status) Message() string {
	switch s {
	case StatusInactive:
		return "account is inactive"
	case StatusSuspended:
		return "account is suspended"
	case StatusPending:
		return "account is pending approval"
	default:
		return "account is not active"
	}
}
