package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
	"github.com/sip-kpbj/api/internal/pkg/password"
	"github.com/sip-kpbj/api/internal/pkg/token"
)

const (
	defaultShortTTL = time.Hour
	defaultLongTTL  = 7 * 24 * time.Hour
)

// SessionConfig holds the token lifetimes.
type SessionConfig struct {
	// ShortTTL applies to logins without "remember me".
	ShortTTL time.Duration
	// LongTTL applies to "remember me" logins and registrations, and caps refreshes.
	LongTTL time.Duration
}

// SessionService implements ports.SessionService on top of a stateless token
// codec. The optional denylist adds server-side revocation on logout; the
// optional sink receives audit events.
type SessionService struct {
	users    ports.UserRepository
	codec    *token.Codec
	denylist ports.TokenDenylist
	events   ports.EventSink
	cfg      SessionConfig
	now      func() time.Time
	log      zerolog.Logger
}

// SessionOption customises a SessionService.
type SessionOption func(*SessionService)

// WithDenylist enables revocation of logged-out tokens.
func WithDenylist(d ports.TokenDenylist) SessionOption {
	return func(s *SessionService) { s.denylist = d }
}

// WithEventSink routes lifecycle events to the audit trail.
func WithEventSink(sink ports.EventSink) SessionOption {
	return func(s *SessionService) { s.events = sink }
}

// WithSessionClock overrides the clock used for audit timestamps.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

func NewSessionService(users ports.UserRepository, codec *token.Codec, cfg SessionConfig, log zerolog.Logger, opts ...SessionOption) *SessionService {
	if cfg.ShortTTL <= 0 {
		cfg.ShortTTL = defaultShortTTL
	}
	if cfg.LongTTL <= 0 {
		cfg.LongTTL = defaultLongTTL
	}
	s := &SessionService{
		users: users,
		codec: codec,
		cfg:   cfg,
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.SessionService = (*SessionService)(nil)

// Login verifies credentials and mints a session. Unknown email, wrong
// password and inactive account are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, pw string, rememberMe bool, client ports.ClientInfo) (*ports.Session, error) {
	if email == "" || pw == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: find user: %w", err)
		}
		// Burn the same bcrypt time as a real comparison.
		password.Verify(pw, dummyDigest())
		s.emit(domain.EventLoginFailed, "", email, client)
		return nil, domain.ErrInvalidCredentials
	}

	if !password.Verify(pw, user.PasswordHash) || !user.IsActive {
		s.emit(domain.EventLoginFailed, user.ID, email, client)
		return nil, domain.ErrInvalidCredentials
	}

	ttl := s.cfg.ShortTTL
	if rememberMe {
		ttl = s.cfg.LongTTL
	}
	sess, err := s.mint(user, ttl)
	if err != nil {
		return nil, err
	}

	s.emit(domain.EventLogin, user.ID, user.Email, client)
	return sess, nil
}

// Register creates an active account with the default role and mints a
// long-lived session for it.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput, client ports.ClientInfo) (*ports.Session, error) {
	if in.Email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: email, password, firstName and lastName are required", domain.ErrInvalidInput)
	}

	digest, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         domain.DefaultRole,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	sess, err := s.mint(created, s.cfg.LongTTL)
	if err != nil {
		return nil, err
	}

	s.emit(domain.EventRegister, created.ID, created.Email, client)
	return sess, nil
}

// Refresh re-mints a still-valid token with the lifetime it was issued with,
// so a short "remember me = false" session stays short. The presented token is
// not revoked: concurrent requests carrying it must keep working.
func (s *SessionService) Refresh(ctx context.Context, rawToken string, client ports.ClientInfo) (*ports.Session, error) {
	claims, user, err := s.resolve(ctx, rawToken)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			s.log.Warn().Err(err).Msg("session refresh degraded to anonymous")
		}
		return nil, domain.ErrUnauthenticated
	}

	ttl := claims.Lifetime()
	if ttl <= 0 || ttl > s.cfg.LongTTL {
		ttl = s.cfg.LongTTL
	}

	sess, err := s.mint(user, ttl)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("session refresh degraded to anonymous")
		return nil, domain.ErrUnauthenticated
	}

	s.emit(domain.EventRefresh, user.ID, user.Email, client)
	return sess, nil
}

// Authenticate resolves rawToken to an active identity. Token and identity
// problems yield domain.ErrUnauthenticated; store failures are returned as is.
func (s *SessionService) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	_, user, err := s.resolve(ctx, rawToken)
	return user, err
}

// Logout revokes the token when a denylist is configured. Invalid or expired
// tokens need no revocation.
func (s *SessionService) Logout(ctx context.Context, rawToken string, client ports.ClientInfo) {
	if rawToken == "" {
		return
	}
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return
	}

	if s.denylist != nil && claims.ID != "" {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
			s.log.Error().Err(err).Str("user_id", claims.Subject).Msg("failed to revoke session token")
		}
	}

	s.emit(domain.EventLogout, claims.Subject, "", client)
}

func (s *SessionService) resolve(ctx context.Context, rawToken string) (token.Claims, *domain.User, error) {
	if rawToken == "" {
		return token.Claims{}, nil, domain.ErrUnauthenticated
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return token.Claims{}, nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("denylist lookup failed; rejecting token")
			return token.Claims{}, nil, fmt.Errorf("%w: denylist unavailable", domain.ErrUnauthenticated)
		}
		if revoked {
			return token.Claims{}, nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
		}
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return token.Claims{}, nil, fmt.Errorf("%w: identity no longer exists", domain.ErrUnauthenticated)
		}
		return token.Claims{}, nil, fmt.Errorf("authenticate: find user: %w", err)
	}
	if !user.IsActive {
		return token.Claims{}, nil, fmt.Errorf("%w: identity inactive", domain.ErrUnauthenticated)
	}

	return claims, user, nil
}

func (s *SessionService) mint(user *domain.User, ttl time.Duration) (*ports.Session, error) {
	raw, claims, err := s.codec.Issue(user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("mint session: %w", err)
	}
	return &ports.Session{
		Token:     raw,
		ExpiresAt: claims.ExpiresAt,
		TTL:       ttl,
		User:      user,
	}, nil
}

func (s *SessionService) emit(kind domain.AuthEventType, userID, email string, client ports.ClientInfo) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(domain.AuthEvent{
		Type:      kind,
		UserID:    userID,
		Email:     email,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Timestamp: s.now().UTC(),
	})
}

var (
	dummyOnce sync.Once
	dummyHash string
)

func dummyDigest() string {
	dummyOnce.Do(func() {
		dummyHash, _ = password.Hash("sip-kpbj-timing-equaliser")
	})
	return dummyHash
}
