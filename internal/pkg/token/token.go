// Package token mints and validates the signed session tokens carried in the
// session cookie. Tokens are stateless HS256 JWTs holding the subject id, a
// unique token id, and the issue/expiry instants.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest signing secret NewCodec accepts.
const MinSecretLength = 32

const issuer = "sip-kpbj"

var (
	// ErrInvalid is wrapped by every decode failure. Callers that must not
	// reveal why a token was rejected should only test for this.
	ErrInvalid = errors.New("invalid token")

	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalid)
	ErrInvalidSignature = fmt.Errorf("%w: signature", ErrInvalid)
	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalid)

	ErrSecretTooShort = fmt.Errorf("token: signing secret must be at least %d bytes", MinSecretLength)
)

// Claims is the decoded content of a session token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime is the TTL the token was issued with.
func (c Claims) Lifetime() time.Duration {
	return c.ExpiresAt.Sub(c.IssuedAt)
}

// Remaining is how long the token stays valid after now (never negative).
func (c Claims) Remaining(now time.Time) time.Duration {
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Codec signs and verifies session tokens with a single shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec signing with secret. There is no fallback secret:
// an empty or short secret is rejected.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue mints a token for subjectID valid for ttl.
func (c *Codec) Issue(subjectID string, ttl time.Duration) (string, Claims, error) {
	if subjectID == "" {
		return "", Claims{}, errors.New("token: empty subject")
	}
	if ttl <= 0 {
		return "", Claims{}, fmt.Errorf("token: non-positive ttl %s", ttl)
	}

	now := c.now().Truncate(time.Second)
	registered := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subjectID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, toClaims(&registered), nil
}

// Decode verifies signature, issuer and expiry and returns the claims.
// Every error wraps ErrInvalid.
func (c *Codec) Decode(raw string) (Claims, error) {
	registered := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, registered, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !tkn.Valid || registered.Subject == "" || registered.IssuedAt == nil {
		return Claims{}, ErrMalformed
	}

	return toClaims(registered), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func toClaims(r *jwt.RegisteredClaims) Claims {
	out := Claims{Subject: r.Subject, ID: r.ID}
	if r.IssuedAt != nil {
		out.IssuedAt = r.IssuedAt.Time
	}
	if r.ExpiresAt != nil {
		out.ExpiresAt = r.ExpiresAt.Time
	}
	return out
}
