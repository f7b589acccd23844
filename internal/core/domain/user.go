package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleEmployer Role = "EMPLOYER"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole normalises free-form role input to a Role.
// Input is trimmed and upper-cased before comparison.
func ParseRole(input string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(input))) {
	case RoleEmployer:
		return RoleEmployer, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", ErrInvalidRole
	}
}

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmployerRequired   = errors.New("employer is required for employee registration")
	ErrEmployerNotFound   = errors.New("employer not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// User models an authenticated actor in the system.
// EmployerID is set only for EMPLOYEE accounts and refers to the
// EMPLOYER user that the employee registered under.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	EmployerID     string
	Active         bool
	FailedAttempts int
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Employee is the roster entry an employer owns for each EMPLOYEE user.
// The link back to the user account is by name, scoped to the creating
// employer, not by a foreign key.
type Employee struct {
	ID              string
	Name            string
	CreatedByUserID string
	Active          bool
	CreatedAt       time.Time
}

// Session backs an issued token. At most one session per user is
// active at any time; a new login supersedes the previous one.
type Session struct {
	ID        string
	UserID    string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Active    bool
}
