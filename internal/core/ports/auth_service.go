package ports

import (
	"context"
	"time"

	"github.com/sip-kpbj/api/internal/core/domain"
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is a freshly minted session token and the identity it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
	User      *domain.User
}

// ClientInfo describes the caller for the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// SessionService is the session lifecycle controller: the only component
// that mints or revokes session tokens.
type SessionService interface {
	Login(ctx context.Context, email, password string, rememberMe bool, client ClientInfo) (*Session, error)
	Register(ctx context.Context, in RegisterInput, client ClientInfo) (*Session, error)
	// Refresh rotates a still-valid token. Every failure is reported as
	// domain.ErrUnauthenticated.
	Refresh(ctx context.Context, rawToken string, client ClientInfo) (*Session, error)
	// Authenticate resolves a token to its identity without minting anything.
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
	// Logout never fails; revocation is best effort.
	Logout(ctx context.Context, rawToken string, client ClientInfo)
}

// CreateUserInput carries an administrator-driven account creation.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
	IsActive  bool
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Password  *string
	Role      *domain.Role
	IsActive  *bool
}

// ListUsersResult is a page of identities.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService manages identities on behalf of an authenticated actor.
type UserService interface {
	Create(ctx context.Context, actor *domain.Principal, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, actor *domain.Principal, id string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) (*ListUsersResult, error)
	Update(ctx context.Context, actor *domain.Principal, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.Principal, id string) error
}
