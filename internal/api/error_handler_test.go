package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

func render(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, resp["error"]
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrInvalidRole, http.StatusBadRequest},
		{domain.ErrEmployerRequired, http.StatusBadRequest},
		{domain.ErrEmployerNotFound, http.StatusNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrEmployeeNotFound, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrAccountDisabled, http.StatusForbidden},
		{domain.ErrAccountLocked, http.StatusForbidden},
		{domain.ErrNotAnEmployee, http.StatusForbidden},
		{domain.ErrMissingEmployer, http.StatusConflict},
		{domain.ErrAlreadyClockedIn, http.StatusConflict},
		{domain.ErrNoActiveClockIn, http.StatusConflict},
	}

	for _, tc := range cases {
		code, msg := render(t, tc.err)
		if code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if msg != tc.err.Error() {
			t.Errorf("%v: expected message %q, got %q", tc.err, tc.err.Error(), msg)
		}
	}
}

func TestHTTPErrorHandler_WrappedDomainError(t *testing.T) {
	wrapped := errors.Join(errors.New("clock in"), domain.ErrAlreadyClockedIn)
	code, _ := render(t, wrapped)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for wrapped error, got %d", code)
	}
}

func TestHTTPErrorHandler_EchoErrorPassesThrough(t *testing.T) {
	code, msg := render(t, echo.NewHTTPError(http.StatusBadRequest, "bad payload"))
	if code != http.StatusBadRequest || msg != "bad payload" {
		t.Fatalf("expected 400 bad payload, got %d %q", code, msg)
	}
}

func TestHTTPErrorHandler_UnknownErrorHidesDetails(t *testing.T) {
	code, msg := render(t, errors.New("mongo: connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal details leaked: %q", msg)
	}
}
