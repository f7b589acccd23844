package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

// In-memory fakes shared by the service tests. All of them are safe
// for concurrent use so the interleaving tests exercise real races.

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := *user
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, input string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == input || u.Email == input {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsernameIgnoreCase(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) SearchEmployers(_ context.Context, query string, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*domain.User
	for _, u := range r.users {
		if u.Role != domain.RoleEmployer {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			clone := *u
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Username < matches[j].Username })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *stubUserRepo) UpdateLoginState(_ context.Context, id string, failedAttempts int, active bool, lastLogin *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FailedAttempts = failedAttempts
	u.Active = active
	u.LastLogin = lastLogin
	return nil
}

type stubEmployeeRepo struct {
	mu        sync.Mutex
	seq       int
	employees map[string]*domain.Employee
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: make(map[string]*domain.Employee)}
}

func (r *stubEmployeeRepo) Create(_ context.Context, employee *domain.Employee) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := *employee
	created.ID = fmt.Sprintf("emp-%d", r.seq)
	r.employees[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *stubEmployeeRepo) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEmployeeRepo) FindByNameAndEmployer(_ context.Context, name, employerUserID string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.Employee
	for _, e := range r.employees {
		if e.Name == name && e.CreatedByUserID == employerUserID {
			if found == nil || e.ID > found.ID {
				found = e
			}
		}
	}
	if found == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *stubEmployeeRepo) ListActiveByEmployer(_ context.Context, employerUserID string) ([]*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Employee
	for _, e := range r.employees {
		if e.CreatedByUserID == employerUserID && e.Active {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*domain.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, session *domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := *session
	created.ID = fmt.Sprintf("sess-%d", r.seq)
	r.sessions[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *stubSessionRepo) DeactivateAllForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.Active {
			s.Active = false
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) FindActiveByToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Token == token && s.Active {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.ErrInvalidToken
}

func (r *stubSessionRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Active = false
	}
	return nil
}

func (r *stubSessionRepo) activeCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.Active {
			n++
		}
	}
	return n
}

type stubRecordRepo struct {
	mu      sync.Mutex
	seq     int
	records map[string]*domain.TimesheetRecord
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{records: make(map[string]*domain.TimesheetRecord)}
}

func (r *stubRecordRepo) Create(_ context.Context, record *domain.TimesheetRecord) (*domain.TimesheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := *record
	created.ID = fmt.Sprintf("rec-%d", r.seq)
	r.records[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *stubRecordRepo) FindOpenByEmployee(_ context.Context, employeeID string) (*domain.TimesheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Status == domain.StatusClockedIn {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, domain.ErrNoActiveClockIn
}

func (r *stubRecordRepo) Close(_ context.Context, recordID string, clockOutAt time.Time, hours domain.Hours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordID]
	if !ok || rec.Status != domain.StatusClockedIn {
		return domain.ErrNoActiveClockIn
	}
	rec.ClockOutAt = &clockOutAt
	rec.HoursWorked = &hours
	rec.Status = domain.StatusClockedOut
	rec.UpdatedAt = clockOutAt
	return nil
}

func (r *stubRecordRepo) ListByEmployer(_ context.Context, employerUserID string) ([]*domain.TimesheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TimesheetRecord
	for _, rec := range r.records {
		if rec.CreatedByUserID == employerUserID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sortRecordsDesc(out)
	return out, nil
}

func (r *stubRecordRepo) ListByEmployee(_ context.Context, employeeID string) ([]*domain.TimesheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TimesheetRecord
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sortRecordsDesc(out)
	return out, nil
}

func (r *stubRecordRepo) openCount(employeeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Status == domain.StatusClockedIn {
			n++
		}
	}
	return n
}

func sortRecordsDesc(records []*domain.TimesheetRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ClockInAt.After(records[j].ClockInAt)
	})
}

// keyedLocker is an in-process Locker giving the same per-key mutual
// exclusion the Redis lock gives in production.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyedLocker) Lock(_ context.Context, key string) (func(context.Context), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return func(context.Context) { m.Unlock() }, nil
}
