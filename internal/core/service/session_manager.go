package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/worktrace/timesheet-system/internal/core/domain"
	"github.com/worktrace/timesheet-system/internal/core/ports"
)

// sessionTTL is how long an issued session stays valid.
const sessionTTL = 24 * time.Hour

// Locker provides mutual exclusion on a string key (Redis-backed in
// production). The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context), error)
}

// SessionManager enforces at most one active session per user.
type SessionManager struct {
	sessions ports.SessionRepository
	locks    Locker
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionManager(sessions ports.SessionRepository, locks Locker, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		locks:    locks,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create supersedes every active session the user holds and inserts a
// new one backing token. The deactivate-then-insert pair runs under a
// per-user lock so two concurrent logins cannot leave two sessions
// active at once.
func (m *SessionManager) Create(ctx context.Context, userID, token string) (*domain.Session, error) {
	unlock, err := m.locks.Lock(ctx, "lock:session:"+userID)
	if err != nil {
		return nil, fmt.Errorf("session lock: %w", err)
	}
	defer unlock(ctx)

	superseded, err := m.sessions.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("supersede sessions: %w", err)
	}
	if superseded > 0 {
		m.log.Info().Str("user_id", userID).Int64("superseded", superseded).Msg("previous sessions deactivated")
	}

	now := m.now()
	session, err := m.sessions.Create(ctx, &domain.Session{
		UserID:    userID,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(sessionTTL),
		Active:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Invalidate deactivates the active session backing token. A token
// with no active session is a no-op.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	session, err := m.sessions.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil
		}
		return fmt.Errorf("find session: %w", err)
	}
	return m.sessions.Deactivate(ctx, session.ID)
}

// Validate returns the active, unexpired session backing token.
func (m *SessionManager) Validate(ctx context.Context, token string) (*domain.Session, error) {
	session, err := m.sessions.FindActiveByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if m.now().After(session.ExpiresAt) {
		return nil, domain.ErrInvalidToken
	}
	return session, nil
}
