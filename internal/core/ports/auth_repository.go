package ports

import (
	"context"
	"time"

	"github.com/sip-kpbj/api/internal/core/domain"
)

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Role   domain.Role
	Search string // partial match on email, first or last name
	Page   int    // 1-based
	Limit  int
}

// UserRepository is the identity store consulted by the session layer.
// Implementations own their concurrency control; email uniqueness is
// enforced by the store and reported as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// TokenDenylist records revoked session tokens until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
