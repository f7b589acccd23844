package domain

import (
	"errors"
	"time"
)

// ClockStatus represents the lifecycle state of a timesheet record.
type ClockStatus string

const (
	StatusClockedIn  ClockStatus = "clocked_in"
	StatusClockedOut ClockStatus = "clocked_out"
)

// validTransitions defines the allowed state machine transitions.
// A closed record is terminal; there is no cancel or edit.
var validTransitions = map[ClockStatus][]ClockStatus{
	StatusClockedIn: {StatusClockedOut},
}

var (
	ErrNotAnEmployee     = errors.New("only employees can clock in/out")
	ErrMissingEmployer   = errors.New("employee account is missing employer assignment")
	ErrEmployeeNotFound  = errors.New("employee record not found")
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrNoActiveClockIn   = errors.New("no active clock-in record found")
)

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ClockStatus) CanTransitionTo(next ClockStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimesheetRecord is a single work interval for one employee.
// ClockOutAt and HoursWorked stay nil until the record is closed.
type TimesheetRecord struct {
	ID              string
	EmployeeID      string
	CreatedByUserID string
	ClockInAt       time.Time
	ClockOutAt      *time.Time
	HoursWorked     *Hours
	Status          ClockStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Open reports whether the record still has a running clock.
func (r *TimesheetRecord) Open() bool {
	return r.Status == StatusClockedIn
}
