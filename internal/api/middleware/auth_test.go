package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/api/cookie"
	"github.com/sip-kpbj/api/internal/core/domain"
)

type stubAuthenticator struct {
	user  *domain.User
	err   error
	calls int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, raw string) (*domain.User, error) {
	s.calls++
	return s.user, s.err
}

func newAuthContext(withCookie string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if withCookie != "" {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: withCookie})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookie.Name {
			return ck
		}
	}
	return nil
}

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	stub := &stubAuthenticator{user: &domain.User{
		ID: "u1", Email: "alice@example.com", FirstName: "Alice", Role: domain.RoleAuditor, IsActive: true,
	}}
	c, rec := newAuthContext("tkn")

	called := false
	handler := Auth(stub, cookie.Jar{}, zerolog.Nop())(func(c echo.Context) error {
		called = true
		p := Principal(c)
		if p == nil || p.ID != "u1" || p.Email != "alice@example.com" || p.Role != domain.RoleAuditor {
			t.Fatalf("unexpected principal: %+v", p)
		}
		if c.Get(RoleKey) != "auditor" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one lookup, got %d", stub.calls)
	}
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	stub := &stubAuthenticator{}
	c, rec := newAuthContext("")

	handler := Auth(stub, cookie.Jar{}, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("store must not be consulted without a cookie")
	}
	if body := rec.Body.String(); body != "{\"error\":\"Unauthenticated\"}\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestAuthMiddleware_IgnoresAuthorizationHeader(t *testing.T) {
	stub := &stubAuthenticator{user: &domain.User{ID: "u1", Role: domain.RoleAdmin, IsActive: true}}
	c, rec := newAuthContext("")
	c.Request().Header.Set("Authorization", "Bearer tkn")

	handler := Auth(stub, cookie.Jar{}, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidSessionClearsCookie(t *testing.T) {
	stub := &stubAuthenticator{err: domain.ErrUnauthenticated}
	c, rec := newAuthContext("garbage")

	handler := Auth(stub, cookie.Jar{}, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	ck := sessionCookie(rec)
	if ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected cleared session cookie, got %+v", ck)
	}
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	stub := &stubAuthenticator{err: errors.New("mongo down")}
	c, rec := newAuthContext("tkn")

	handler := Auth(stub, cookie.Jar{}, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("cookie must survive a transient store failure")
	}
}
