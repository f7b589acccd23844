package ports

import (
	"context"
	"time"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

// RecordView is the read projection of a single timesheet record.
type RecordView struct {
	ID           string
	EmployeeName string
	EmployerName string
	ClockInAt    time.Time
	ClockOutAt   *time.Time
	HoursWorked  *domain.Hours
}

// DashboardView is the role-scoped dashboard.
//
// For an EMPLOYER: EmployerName is empty, AccumulatedHours is zero,
// ClockedIn is false, Employees lists active roster names, and Records
// covers every record the employer owns.
//
// For an EMPLOYEE: EmployerName is the employer's username, Employees
// is empty, and Records covers only the employee's own intervals.
type DashboardView struct {
	Role             string
	EmployerName     string
	AccumulatedHours domain.Hours
	ClockedIn        bool
	Employees        []string
	Records          []RecordView
}

// TimesheetService drives the per-employee clock state machine and the
// dashboard aggregation.
type TimesheetService interface {
	ClockIn(ctx context.Context, userID string) error
	ClockOut(ctx context.Context, userID string) error
	Dashboard(ctx context.Context, userID string) (*DashboardView, error)
}
