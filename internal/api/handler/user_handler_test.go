package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sip-kpbj/api/internal/api/middleware"
	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

type stubUserService struct {
	created ports.CreateUserInput
	updated ports.UpdateUserInput
	filter  ports.UserFilter
	deleted string
	err     error
}

func (s *stubUserService) Create(_ context.Context, _ *domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "u9", Email: in.Email, Role: in.Role, IsActive: in.IsActive, PasswordHash: "hash"}, nil
}

func (s *stubUserService) Get(_ context.Context, _ *domain.Principal, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Email: "x@example.com", Role: domain.RoleUser, PasswordHash: "hash"}, nil
}

func (s *stubUserService) List(_ context.Context, f ports.UserFilter) (*ports.ListUsersResult, error) {
	s.filter = f
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ListUsersResult{
		Items:      []*domain.User{alice},
		Total:      1,
		Page:       1,
		Limit:      20,
		TotalPages: 1,
	}, nil
}

func (s *stubUserService) Update(_ context.Context, _ *domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	s.updated = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, FirstName: "Renamed", UpdatedAt: time.Now()}, nil
}

func (s *stubUserService) Delete(_ context.Context, _ *domain.Principal, id string) error {
	s.deleted = id
	return s.err
}

var adminPrincipal = &domain.Principal{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin}

func TestUserHandler_List(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := newJSONContext(http.MethodGet, "/api/users?role=auditor&search=ali&page=2&limit=5", "")
	c.Set(middleware.PrincipalKey, adminPrincipal)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ports.UserFilter{Role: domain.RoleAuditor, Search: "ali", Page: 2, Limit: 5}, svc.filter)

	resp := decodeBody(t, rec)
	data, _ := resp["data"].([]any)
	require.Len(t, data, 1)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.EqualValues(t, 1, resp["pagination"].(map[string]any)["total"])
}

func TestUserHandler_Create(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	body := `{"email":"new@example.com","password":"secret1","firstName":"N","lastName":"U","role":"auditor"}`
	c, rec := newJSONContext(http.MethodPost, "/api/users", body)
	c.Set(middleware.PrincipalKey, adminPrincipal)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.RoleAuditor, svc.created.Role)
	assert.True(t, svc.created.IsActive, "accounts default to active")
	assert.Nil(t, findCookie(rec), "creating a user must not touch the caller's session")
}

func TestUserHandler_Create_RejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	body := `{"email":"new@example.com","password":"secret1","firstName":"N","lastName":"U","role":"root"}`
	c, _ := newJSONContext(http.MethodPost, "/api/users", body)
	c.Set(middleware.PrincipalKey, adminPrincipal)

	err := h.Create(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role must be one of")
}

func TestUserHandler_Update(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := newJSONContext(http.MethodPatch, "/api/users/u1", `{"firstName":"Renamed","role":"manager"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	c.Set(middleware.PrincipalKey, adminPrincipal)
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated.FirstName)
	assert.Equal(t, "Renamed", *svc.updated.FirstName)
	require.NotNil(t, svc.updated.Role)
	assert.Equal(t, domain.RoleManager, *svc.updated.Role)
	assert.Nil(t, svc.updated.Password)
}

func TestUserHandler_DomainErrorsPropagate(t *testing.T) {
	svc := &stubUserService{err: domain.ErrForbidden}
	h := NewUserHandler(svc)

	c, _ := newJSONContext(http.MethodDelete, "/api/users/a1", "")
	c.SetParamNames("id")
	c.SetParamValues("a1")
	c.Set(middleware.PrincipalKey, adminPrincipal)

	err := h.Delete(c)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, "a1", svc.deleted)
}

func TestUserHandler_Delete(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := newJSONContext(http.MethodDelete, "/api/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	c.Set(middleware.PrincipalKey, adminPrincipal)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
