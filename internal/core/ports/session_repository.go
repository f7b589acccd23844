package ports

import (
	"context"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

// SessionRepository defines the persistence surface for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// DeactivateAllForUser clears the active flag on every session the
	// user currently holds. Returns the number of sessions deactivated.
	DeactivateAllForUser(ctx context.Context, userID string) (int64, error)
	// FindActiveByToken returns the active session backing token, or
	// domain.ErrInvalidToken when none exists.
	FindActiveByToken(ctx context.Context, token string) (*domain.Session, error)
	Deactivate(ctx context.Context, id string) error
}
