package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worktrace/timesheet-system/internal/api/metrics"
	"github.com/worktrace/timesheet-system/internal/core/ports"
)

type TimesheetHandler struct {
	service ports.TimesheetService
}

func NewTimesheetHandler(service ports.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: service}
}

// Dashboard returns the role-scoped dashboard for the caller.
//
// @Summary      Dashboard
// @Tags         timesheets
// @Produce      json
// @Success      200  {object}  dashboardView
// @Failure      401  {object}  map[string]string
// @Router       /api/timesheets/dashboard [get]
func (h *TimesheetHandler) Dashboard(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardView(view))
}

// ClockIn opens a work interval for the calling employee.
//
// @Summary      Clock in
// @Tags         timesheets
// @Success      200
// @Failure      409  {object}  map[string]string
// @Router       /api/timesheets/clock-in [post]
func (h *TimesheetHandler) ClockIn(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.ClockIn(c.Request().Context(), userID); err != nil {
		return err
	}
	metrics.ClockEventsTotal.WithLabelValues("clock_in").Inc()
	return c.NoContent(http.StatusOK)
}

// ClockOut closes the calling employee's open work interval.
//
// @Summary      Clock out
// @Tags         timesheets
// @Success      200
// @Failure      409  {object}  map[string]string
// @Router       /api/timesheets/clock-out [post]
func (h *TimesheetHandler) ClockOut(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.ClockOut(c.Request().Context(), userID); err != nil {
		return err
	}
	metrics.ClockEventsTotal.WithLabelValues("clock_out").Inc()
	return c.NoContent(http.StatusOK)
}
