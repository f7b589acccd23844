package ports

import (
	"context"
	"time"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

// UserRepository defines the persistence surface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsernameOrEmail matches the input against either the
	// username (case-sensitive) or the email (stored lowercased).
	FindByUsernameOrEmail(ctx context.Context, input string) (*domain.User, error)
	FindByUsernameIgnoreCase(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SearchEmployers returns EMPLOYER users whose username contains
	// query (case-insensitive), ordered by username ascending, capped
	// at limit results. An empty query matches all employers.
	SearchEmployers(ctx context.Context, query string, limit int) ([]*domain.User, error)
	// UpdateLoginState persists the failed-attempt counter, the active
	// flag, and the last-login timestamp. Used on both the success and
	// the failure path of login.
	UpdateLoginState(ctx context.Context, id string, failedAttempts int, active bool, lastLogin *time.Time) error
}

// EmployeeRepository defines the persistence surface for roster entries.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	// FindByNameAndEmployer resolves the roster entry for an EMPLOYEE
	// user by (name, creating employer), the linkage the schema uses
	// instead of a user foreign key.
	FindByNameAndEmployer(ctx context.Context, name, employerUserID string) (*domain.Employee, error)
	ListActiveByEmployer(ctx context.Context, employerUserID string) ([]*domain.Employee, error)
}
