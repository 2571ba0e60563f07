package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// registerRequest accepts role and isActive for client compatibility; both are
// ignored because self-registration always yields an active default-role account.
type registerRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Role      string `json:"role,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

// sessionUser is the sanitized identity returned by the /api/auth endpoints.
type sessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type authResponse struct {
	User *sessionUser `json:"user"`
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

type permissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// --- Users ---

type createUserRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin auditor manager user"`
	IsActive  *bool  `json:"isActive"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1"`
	Password  *string `json:"password"  validate:"omitempty,min=6,max=72"`
	Role      *string `json:"role"      validate:"omitempty,oneof=admin auditor manager user"`
	IsActive  *bool   `json:"isActive"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type paginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listUsersResponse struct {
	Data       []userResponse `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}
