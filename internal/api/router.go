package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worktrace/timesheet-system/internal/api/handler"
	"github.com/worktrace/timesheet-system/internal/api/middleware"
	"github.com/worktrace/timesheet-system/internal/core/domain"
	"github.com/worktrace/timesheet-system/internal/core/service"
	mongodb "github.com/worktrace/timesheet-system/internal/infrastructure/db/mongo"
	redisdb "github.com/worktrace/timesheet-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("timesheets"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	employeeRepo := mongodb.NewEmployeeRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)
	recordRepo := mongodb.NewTimesheetRepository(db)
	locker := redisdb.NewLocker(rdb)

	sessionManager := service.NewSessionManager(sessionRepo, locker, log)
	authService := service.NewAuthService(userRepo, employeeRepo, sessionManager, jwtSecret, log)
	timesheetService := service.NewTimesheetService(userRepo, employeeRepo, recordRepo, locker, log)

	authHandler := handler.NewAuthHandler(authService)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService)

	sessionCheck := middleware.SessionValidatorFunc(func(c echo.Context, token string) error {
		_, err := sessionManager.Validate(c.Request().Context(), token)
		return err
	})
	authMiddleware := middleware.Auth(jwtSecret, sessionCheck)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me)
	e.GET("/auth/employers", authHandler.SearchEmployers)

	// --- Timesheet routes (authenticated) ---
	timesheets := e.Group("/api/timesheets", authMiddleware)
	timesheets.GET("/dashboard", timesheetHandler.Dashboard)
	timesheets.POST("/clock-in", timesheetHandler.ClockIn, middleware.RBAC(string(domain.RoleEmployee)))
	timesheets.POST("/clock-out", timesheetHandler.ClockOut, middleware.RBAC(string(domain.RoleEmployee)))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
