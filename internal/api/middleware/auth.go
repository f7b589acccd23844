package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionValidator confirms a token is backed by an active, unexpired
// server-side session. A token superseded by a newer login or revoked
// by logout fails here even when its signature is still valid.
type SessionValidator interface {
	Validate(ctx echo.Context, token string) error
}

// SessionValidatorFunc adapts a func to SessionValidator.
type SessionValidatorFunc func(ctx echo.Context, token string) error

func (f SessionValidatorFunc) Validate(ctx echo.Context, token string) error {
	return f(ctx, token)
}

// Auth validates the bearer JWT, checks the backing session, and
// injects user_id and role into the request context.
func Auth(jwtSecret string, sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			if sessions != nil {
				if err := sessions.Validate(c, parts[1]); err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
			}

			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])

			return next(c)
		}
	}
}
