package handler

import (
	"time"

	"github.com/worktrace/timesheet-system/internal/core/domain"
	"github.com/worktrace/timesheet-system/internal/core/ports"
)

// userView is the wire shape of a user account. EmployerName renders
// as null for EMPLOYER accounts.
type userView struct {
	UserID       string  `json:"userId"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	EmployerName *string `json:"employerName"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type recordView struct {
	RecordID     string        `json:"recordId"`
	EmployeeName string        `json:"employeeName"`
	EmployerName string        `json:"employerName"`
	ClockInAt    time.Time     `json:"clockInAt"`
	ClockOutAt   *time.Time    `json:"clockOutAt"`
	HoursWorked  *domain.Hours `json:"hoursWorked"`
}

type dashboardView struct {
	Role             string       `json:"role"`
	EmployerName     *string      `json:"employerName"`
	AccumulatedHours domain.Hours `json:"accumulatedHours"`
	ClockedIn        bool         `json:"clockedIn"`
	Employees        []string     `json:"employees"`
	Records          []recordView `json:"records"`
}

func toUserView(v ports.UserView) userView {
	out := userView{
		UserID:   v.ID,
		Username: v.Username,
		Email:    v.Email,
		Role:     v.Role,
	}
	if v.EmployerName != "" {
		name := v.EmployerName
		out.EmployerName = &name
	}
	return out
}

func toDashboardView(v *ports.DashboardView) dashboardView {
	out := dashboardView{
		Role:             v.Role,
		AccumulatedHours: v.AccumulatedHours,
		ClockedIn:        v.ClockedIn,
		Employees:        v.Employees,
		Records:          make([]recordView, 0, len(v.Records)),
	}
	if v.EmployerName != "" {
		name := v.EmployerName
		out.EmployerName = &name
	}
	if out.Employees == nil {
		out.Employees = []string{}
	}
	for _, r := range v.Records {
		out.Records = append(out.Records, recordView{
			RecordID:     r.ID,
			EmployeeName: r.EmployeeName,
			EmployerName: r.EmployerName,
			ClockInAt:    r.ClockInAt,
			ClockOutAt:   r.ClockOutAt,
			HoursWorked:  r.HoursWorked,
		})
	}
	return out
}
