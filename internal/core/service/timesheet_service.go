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

// TimesheetService drives the per-employee Idle/Active clock state
// machine and assembles the role-scoped dashboard.
type TimesheetService struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	records   ports.TimesheetRepository
	locks     Locker
	log       zerolog.Logger
	now       func() time.Time
}

func NewTimesheetService(
	users ports.UserRepository,
	employees ports.EmployeeRepository,
	records ports.TimesheetRepository,
	locks Locker,
	log zerolog.Logger,
) *TimesheetService {
	return &TimesheetService{
		users:     users,
		employees: employees,
		records:   records,
		locks:     locks,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ClockIn opens a new work interval. The open-record guard and the
// insert run under a per-employee lock so two concurrent calls cannot
// both observe Idle and create two open records.
func (s *TimesheetService) ClockIn(ctx context.Context, userID string) error {
	user, employee, err := s.resolveEmployee(ctx, userID)
	if err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, "lock:clock:"+employee.ID)
	if err != nil {
		return fmt.Errorf("clock lock: %w", err)
	}
	defer unlock(ctx)

	if _, err := s.records.FindOpenByEmployee(ctx, employee.ID); err == nil {
		return domain.ErrAlreadyClockedIn
	} else if !errors.Is(err, domain.ErrNoActiveClockIn) {
		return fmt.Errorf("check open record: %w", err)
	}

	now := s.now()
	_, err = s.records.Create(ctx, &domain.TimesheetRecord{
		EmployeeID:      employee.ID,
		CreatedByUserID: user.EmployerID,
		ClockInAt:       now,
		Status:          domain.StatusClockedIn,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	s.log.Info().Str("employee_id", employee.ID).Msg("clocked in")
	return nil
}

// ClockOut closes the employee's open record, computing hours from
// whole elapsed minutes rounded half-up to two decimals.
func (s *TimesheetService) ClockOut(ctx context.Context, userID string) error {
	_, employee, err := s.resolveEmployee(ctx, userID)
	if err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, "lock:clock:"+employee.ID)
	if err != nil {
		return fmt.Errorf("clock lock: %w", err)
	}
	defer unlock(ctx)

	record, err := s.records.FindOpenByEmployee(ctx, employee.ID)
	if err != nil {
		return err
	}
	if !record.Status.CanTransitionTo(domain.StatusClockedOut) {
		return domain.ErrNoActiveClockIn
	}

	clockOutAt := s.now()
	minutes := int64(clockOutAt.Sub(record.ClockInAt) / time.Minute)
	hours := domain.HoursFromMinutes(minutes)

	if err := s.records.Close(ctx, record.ID, clockOutAt, hours); err != nil {
		return fmt.Errorf("close record: %w", err)
	}

	s.log.Info().Str("employee_id", employee.ID).Str("hours", hours.String()).Msg("clocked out")
	return nil
}

// Dashboard assembles the role-scoped view for userID.
func (s *TimesheetService) Dashboard(ctx context.Context, userID string) (*ports.DashboardView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	if user.Role == domain.RoleEmployer {
		return s.employerDashboard(ctx, user)
	}
	return s.employeeDashboard(ctx, user)
}

func (s *TimesheetService) employerDashboard(ctx context.Context, user *domain.User) (*ports.DashboardView, error) {
	roster, err := s.employees.ListActiveByEmployer(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	names := make([]string, 0, len(roster))
	for _, e := range roster {
		names = append(names, e.Name)
	}

	records, err := s.records.ListByEmployer(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	views, err := s.recordViews(ctx, records, user.Username)
	if err != nil {
		return nil, err
	}

	return &ports.DashboardView{
		Role:      string(user.Role),
		Employees: names,
		Records:   views,
	}, nil
}

func (s *TimesheetService) employeeDashboard(ctx context.Context, user *domain.User) (*ports.DashboardView, error) {
	if user.EmployerID == "" {
		return nil, domain.ErrMissingEmployer
	}
	employer, err := s.users.FindByID(ctx, user.EmployerID)
	if err != nil {
		return nil, fmt.Errorf("resolve employer: %w", err)
	}
	employee, err := s.employees.FindByNameAndEmployer(ctx, user.Username, user.EmployerID)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	views, err := s.recordViews(ctx, records, employer.Username)
	if err != nil {
		return nil, err
	}

	// Open records carry no hours yet and contribute nothing to the sum.
	var accumulated domain.Hours
	clockedIn := false
	for _, r := range records {
		if r.HoursWorked != nil {
			accumulated = accumulated.Add(*r.HoursWorked)
		}
		if r.Open() {
			clockedIn = true
		}
	}

	return &ports.DashboardView{
		Role:             string(user.Role),
		EmployerName:     employer.Username,
		AccumulatedHours: accumulated,
		ClockedIn:        clockedIn,
		Employees:        []string{},
		Records:          views,
	}, nil
}

// recordViews maps records to their read projection, resolving each
// employee name with an explicit fetch (cached per call).
func (s *TimesheetService) recordViews(ctx context.Context, records []*domain.TimesheetRecord, employerName string) ([]ports.RecordView, error) {
	names := make(map[string]string)
	views := make([]ports.RecordView, 0, len(records))
	for _, r := range records {
		name, ok := names[r.EmployeeID]
		if !ok {
			employee, err := s.employees.FindByID(ctx, r.EmployeeID)
			if err != nil {
				return nil, fmt.Errorf("resolve employee %s: %w", r.EmployeeID, err)
			}
			name = employee.Name
			names[r.EmployeeID] = name
		}
		views = append(views, ports.RecordView{
			ID:           r.ID,
			EmployeeName: name,
			EmployerName: employerName,
			ClockInAt:    r.ClockInAt,
			ClockOutAt:   r.ClockOutAt,
			HoursWorked:  r.HoursWorked,
		})
	}
	return views, nil
}

// resolveEmployee loads the user and its roster entry, enforcing the
// role and employer-assignment preconditions shared by both clock
// transitions.
func (s *TimesheetService) resolveEmployee(ctx context.Context, userID string) (*domain.User, *domain.Employee, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, domain.ErrUserNotFound
	}
	if user.Role != domain.RoleEmployee {
		return nil, nil, domain.ErrNotAnEmployee
	}
	if user.EmployerID == "" {
		return nil, nil, domain.ErrMissingEmployer
	}
	employee, err := s.employees.FindByNameAndEmployer(ctx, user.Username, user.EmployerID)
	if err != nil {
		return nil, nil, err
	}
	return user, employee, nil
}
