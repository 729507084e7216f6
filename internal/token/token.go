package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 7 * time.Hour

var (
	// ErrNotConfigured means the signing secret is absent. This is a server
	// fault, never a client one: with no secret the service stays inert
	// instead of accepting anything.
	ErrNotConfigured = errors.New("token service not configured")
	ErrExpired       = errors.New("token expired")
	ErrInvalid       = errors.New("invalid token")
)

// Claims is what an auth_token carries. A token is only usable when UserID is
// set and at least one of Username/Email identifies the subject.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	Secret []byte
	TTL    time.Duration
}

func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{Secret: secret, TTL: ttl}
}

// Issue signs claims with an expiry of now+ttl, falling back to the service
// TTL when ttl is zero. A negative ttl is honored as-is and yields an
// already-expired token.
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrNotConfigured
	}
	if ttl == 0 {
		ttl = s.TTL
	}

	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// Verify decodes raw and checks signature, expiry and required claims.
// Failures are distinguishable: ErrNotConfigured, ErrExpired, ErrInvalid.
func (s *Service) Verify(raw string) (*Claims, error) {
	if len(s.Secret) == 0 {
		return nil, ErrNotConfigured
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}

	if claims.ExpiresAt == nil {
		return nil, ErrInvalid
	}
	if claims.UserID == 0 {
		return nil, ErrInvalid
	}
	if claims.Username == "" && claims.Email == "" {
		return nil, ErrInvalid
	}

	return &claims, nil
}
