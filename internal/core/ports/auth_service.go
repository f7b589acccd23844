package ports

import "context"

// RegisterInput carries all data needed to create an account.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	Role             string
	EmployerUsername string
}

// UserView is the public projection of a user account.
// EmployerName is empty for EMPLOYER accounts.
type UserView struct {
	ID           string
	Username     string
	Email        string
	Role         string
	EmployerName string
}

// AuthResult pairs an issued token with the authenticated user.
type AuthResult struct {
	Token string
	User  UserView
}

// AuthService covers registration, login with lockout, logout,
// current-user resolution, and employer search.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error)
	// Logout deactivates the session backing token. A token with no
	// matching active session is a no-op, not an error.
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*UserView, error)
	SearchEmployers(ctx context.Context, query string) ([]UserView, error)
}
