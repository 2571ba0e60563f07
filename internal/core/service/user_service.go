package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
	"github.com/sip-kpbj/api/internal/pkg/password"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserService implements ports.UserService. Route middleware already gates by
// role; the checks here enforce the self-service rules that depend on the
// target record.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

var _ ports.UserService = (*UserService)(nil)

// Create adds an account with an explicit role. Only administrators may call it.
func (s *UserService) Create(ctx context.Context, actor *domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if !isAdmin(actor) {
		return nil, domain.ErrForbidden
	}
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	digest, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		IsActive:     in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Str("by", actor.ID).Msg("user created")
	return created, nil
}

// Get returns one account. Administrators and auditors may read any account,
// everyone else only their own.
func (s *UserService) Get(ctx context.Context, actor *domain.Principal, id string) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	if actor.ID != id && actor.Role != domain.RoleAdmin && actor.Role != domain.RoleAuditor {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, id)
}

// List returns one page of accounts.
func (s *UserService) List(ctx context.Context, filter ports.UserFilter) (*ports.ListUsersResult, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, filter.Role)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update. Non-administrators may only edit their own
// names and password; administrators may not demote or deactivate themselves.
func (s *UserService) Update(ctx context.Context, actor *domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	self := actor.ID == id
	admin := isAdmin(actor)

	if !admin && (!self || in.Role != nil || in.IsActive != nil) {
		return nil, domain.ErrForbidden
	}
	if admin && self {
		if in.Role != nil && *in.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: administrators cannot change their own role", domain.ErrInvalidInput)
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, fmt.Errorf("%w: administrators cannot deactivate themselves", domain.ErrInvalidInput)
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		if !in.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrInvalidInput)
		}
		digest, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = digest
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Str("by", actor.ID).Msg("user updated")
	return user, nil
}

// Delete removes an account. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.Principal, id string) error {
	if !isAdmin(actor) {
		return domain.ErrForbidden
	}
	if actor.ID == id {
		return fmt.Errorf("%w: administrators cannot delete themselves", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("by", actor.ID).Msg("user deleted")
	return nil
}

// hashPassword reports secrets bcrypt cannot hash as invalid input.
func hashPassword(pw string) (string, error) {
	digest, err := password.Hash(pw)
	if errors.Is(err, password.ErrTooLong) {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return digest, err
}

func isAdmin(p *domain.Principal) bool {
	return p != nil && p.Role == domain.RoleAdmin
}
