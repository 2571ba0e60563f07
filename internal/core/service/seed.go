package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
	"github.com/sip-kpbj/api/internal/pkg/password"
)

// seedPasswordBytes is the number of random bytes for the bootstrap admin password.
const seedPasswordBytes = 16

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Email     string
	FirstName string
	LastName  string
}

// SeedAdmin creates the first administrator when the store holds no identities.
// The generated password is logged once at WARN and must be changed immediately.
// Returns the generated password, or "" when seeding was skipped.
func SeedAdmin(ctx context.Context, users ports.UserRepository, seed AdminSeed, log zerolog.Logger) (string, error) {
	email := strings.TrimSpace(seed.Email)
	if email == "" {
		return "", nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		log.Debug().Int64("users", count).Msg("users exist, skipping admin seed")
		return "", nil
	}

	buf := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	pw := hex.EncodeToString(buf)

	digest, err := password.Hash(pw)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	now := time.Now().UTC()
	admin, err := users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: digest,
		FirstName:    seed.FirstName,
		LastName:     seed.LastName,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	log.Warn().
		Str("user_id", admin.ID).
		Str("email", email).
		Str("password", pw).
		Str("action_required", "change this password immediately").
		Msg("bootstrap admin account created")

	return pw, nil
}
