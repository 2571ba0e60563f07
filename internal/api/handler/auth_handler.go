package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/api/cookie"
	"github.com/sip-kpbj/api/internal/api/metrics"
	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

// AuthHandler exposes the session lifecycle under /api/auth.
type AuthHandler struct {
	sessions ports.SessionService
	jar      cookie.Jar
	log      zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, jar cookie.Jar, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, jar: jar, log: log}
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe, clientInfo(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.jar.Set(c, sess.Token, sess.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{User: toSessionUser(sess.User)})
}

// Register creates an active user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	sess, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, clientInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("exists").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "User already exists"})
		case errors.Is(err, domain.ErrInvalidInput):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	h.jar.Set(c, sess.Token, sess.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{User: toSessionUser(sess.User)})
}

// Me returns the current identity and slides the session forward. Any
// failure is reported as an anonymous session, never as an error.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  authResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	raw := cookie.Read(c)
	if raw == "" {
		metrics.RefreshTotal.WithLabelValues("anonymous").Inc()
		return c.JSON(http.StatusUnauthorized, authResponse{User: nil})
	}

	sess, err := h.sessions.Refresh(c.Request().Context(), raw, clientInfo(c))
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("anonymous").Inc()
		h.jar.Clear(c)
		return c.JSON(http.StatusUnauthorized, authResponse{User: nil})
	}

	metrics.RefreshTotal.WithLabelValues("rotated").Inc()
	h.jar.Set(c, sess.Token, sess.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{User: toSessionUser(sess.User)})
}

// Logout clears the session cookie and revokes the token when possible. It
// always succeeds, with or without a session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context(), cookie.Read(c), clientInfo(c))
	h.jar.Clear(c)
	return c.JSON(http.StatusOK, logoutResponse{OK: true})
}

// Permissions lists the menu keys granted to the caller's role.
//
// @Summary      Permissions of the current role
// @Tags         auth
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  permissionsResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	perms := domain.PermissionsFor(p.Role)
	out := make([]string, 0, len(perms))
	for _, perm := range perms {
		out = append(out, string(perm))
	}
	return c.JSON(http.StatusOK, permissionsResponse{Role: string(p.Role), Permissions: out})
}
