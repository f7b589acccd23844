package ports

import (
	"context"
	"time"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

// TimesheetRepository defines the persistence surface for timesheet records.
type TimesheetRepository interface {
	Create(ctx context.Context, record *domain.TimesheetRecord) (*domain.TimesheetRecord, error)
	// FindOpenByEmployee returns the employee's record with
	// status=clocked_in, or domain.ErrNoActiveClockIn when the
	// employee is idle.
	FindOpenByEmployee(ctx context.Context, employeeID string) (*domain.TimesheetRecord, error)
	// Close stamps clock-out time and computed hours on an open record
	// and moves it to clocked_out.
	Close(ctx context.Context, recordID string, clockOutAt time.Time, hours domain.Hours) error
	// ListByEmployer returns every record owned by the employer,
	// ordered by clock-in descending.
	ListByEmployer(ctx context.Context, employerUserID string) ([]*domain.TimesheetRecord, error)
	// ListByEmployee returns the employee's records, ordered by
	// clock-in descending.
	ListByEmployee(ctx context.Context, employeeID string) ([]*domain.TimesheetRecord, error)
}
