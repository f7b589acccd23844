package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/worktrace/timesheet-system/internal/core/domain"
	"github.com/worktrace/timesheet-system/internal/core/ports"
)

const (
	maxFailedAttempts = 5
	tokenTTL          = 24 * time.Hour
	employerSearchCap = 10
)

// AuthService implements registration, login with account lockout,
// logout, current-user resolution, and employer search.
type AuthService struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	sessions  *SessionManager
	jwtSecret string
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	employees ports.EmployeeRepository,
	sessions *SessionManager,
	jwtSecret string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		employees: employees,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, domain.ErrUserExists
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, domain.ErrUserExists
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	var employer *domain.User
	if role == domain.RoleEmployee {
		employerUsername := strings.TrimSpace(in.EmployerUsername)
		if employerUsername == "" {
			return nil, domain.ErrEmployerRequired
		}
		found, err := s.users.FindByUsernameIgnoreCase(ctx, employerUsername)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrEmployerNotFound
			}
			return nil, fmt.Errorf("resolve employer: %w", err)
		}
		if found.Role != domain.RoleEmployer {
			return nil, domain.ErrEmployerNotFound
		}
		employer = found
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if employer != nil {
		user.EmployerID = employer.ID
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if role == domain.RoleEmployee {
		_, err = s.employees.Create(ctx, &domain.Employee{
			Name:            created.Username,
			CreatedByUserID: employer.ID,
			Active:          true,
			CreatedAt:       now,
		})
		if err != nil {
			return nil, fmt.Errorf("create employee: %w", err)
		}
	}

	token, err := s.issueToken(created)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Create(ctx, created.ID, token); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")

	view, err := s.toView(ctx, created)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: *view}, nil
}

func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*ports.AuthResult, error) {
	input := strings.TrimSpace(usernameOrEmail)

	user, err := s.users.FindByUsernameOrEmail(ctx, input)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		// The counter increment is persisted even though the call
		// fails: brute-force tracking must survive the request.
		attempts := user.FailedAttempts + 1
		if attempts >= maxFailedAttempts {
			if err := s.users.UpdateLoginState(ctx, user.ID, attempts, false, user.LastLogin); err != nil {
				return nil, fmt.Errorf("lock account: %w", err)
			}
			s.log.Warn().Str("user_id", user.ID).Msg("account locked after repeated failed logins")
			return nil, domain.ErrAccountLocked
		}
		if err := s.users.UpdateLoginState(ctx, user.ID, attempts, true, user.LastLogin); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.UpdateLoginState(ctx, user.ID, 0, true, &now); err != nil {
		return nil, fmt.Errorf("stamp login: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Create(ctx, user.ID, token); err != nil {
		return nil, err
	}

	view, err := s.toView(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: *view}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*ports.UserView, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.toView(ctx, user)
}

func (s *AuthService) SearchEmployers(ctx context.Context, query string) ([]ports.UserView, error) {
	employers, err := s.users.SearchEmployers(ctx, strings.TrimSpace(query), employerSearchCap)
	if err != nil {
		return nil, fmt.Errorf("search employers: %w", err)
	}
	views := make([]ports.UserView, 0, len(employers))
	for _, u := range employers {
		views = append(views, ports.UserView{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     string(u.Role),
		})
	}
	return views, nil
}

// toView builds the public user projection, resolving the employer's
// username with an explicit fetch.
func (s *AuthService) toView(ctx context.Context, user *domain.User) (*ports.UserView, error) {
	view := &ports.UserView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
	if user.EmployerID != "" {
		employer, err := s.users.FindByID(ctx, user.EmployerID)
		if err != nil {
			return nil, fmt.Errorf("resolve employer: %w", err)
		}
		view.EmployerName = employer.Username
	}
	return view, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  s.now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// parseToken validates the signed token and returns the user id it encodes.
func (s *AuthService) parseToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}
