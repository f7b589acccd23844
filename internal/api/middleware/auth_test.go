package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, authHeader string, sessions SessionValidator) (echo.Context, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(testSecret, sessions)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c), called
}

func TestAuth_ValidTokenInjectsClaims(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "u1",
		"role": "EMPLOYEE",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	sessionChecked := false
	sessions := SessionValidatorFunc(func(_ echo.Context, got string) error {
		sessionChecked = true
		if got != token {
			t.Fatalf("unexpected token passed to session check")
		}
		return nil
	})

	c, err, called := runAuth(t, "Bearer "+token, sessions)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || !sessionChecked {
		t.Fatalf("expected handler and session check to run")
	}
	if c.Get("user_id") != "u1" || c.Get("role") != "EMPLOYEE" {
		t.Fatalf("claims not injected: %v %v", c.Get("user_id"), c.Get("role"))
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err, called := runAuth(t, "", nil)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if called {
		t.Fatalf("handler should not run")
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	_, err, _ := runAuth(t, "Token abc", nil)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_BadSignature(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err, called := runAuth(t, "Bearer "+token, nil)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if called {
		t.Fatalf("handler should not run")
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err, _ := runAuth(t, "Bearer "+token, nil)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

// A structurally valid JWT whose server-side session was superseded or
// revoked must be rejected.
func TestAuth_RevokedSession(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	sessions := SessionValidatorFunc(func(echo.Context, string) error {
		return errors.New("no active session")
	})

	_, err, called := runAuth(t, "Bearer "+token, sessions)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if called {
		t.Fatalf("handler should not run")
	}
}
