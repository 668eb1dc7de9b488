package dto

import (
	"time"

	"github.com/sanad-org/sanad/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LoginResponse represents the outcome of a login call.
type LoginResponse struct {
	Success bool             `json:"success"`
	Token   string           `json:"token,omitempty"`
	User    *domain.Identity `json:"user,omitempty"`
	Message string           `json:"message"`
}

// LogoutResponse represents the outcome of a logout call.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse represents a user in API responses. The password hash is
// never serialized.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Department  string     `json:"department,omitempty"`
	Position    string     `json:"position,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionResponse represents a session in API responses. The token is
// never serialized; only its owner holds it.
type SessionResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	IPAddress      string     `json:"ip_address,omitempty"`
	UserAgent      string     `json:"user_agent,omitempty"`
	Active         bool       `json:"active"`
	LoginAt        time.Time  `json:"login_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	LogoutAt       *time.Time `json:"logout_at,omitempty"`
}

// SessionFromDomain converts a domain session to a response.
func SessionFromDomain(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		Active:         s.Active,
		LoginAt:        s.LoginAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
		LogoutAt:       s.LogoutAt,
	}
}

// SessionsFromDomain converts domain sessions to responses.
func SessionsFromDomain(sessions []*domain.Session) []*SessionResponse {
	result := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		result[i] = SessionFromDomain(s)
	}
	return result
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Status:      string(u.Status),
		Department:  u.Department,
		Position:    u.Position,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}
