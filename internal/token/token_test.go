package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService(testSecret, 0)

	raw, err := svc.Issue(Claims{
		Username: "admin",
		Email:    "admin@school.edu",
		UserID:   1,
		Role:     "admin",
	}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, uint(1), claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, "admin", claims.Username)
	require.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestIssueNegativeTTLStampsPastExpiry(t *testing.T) {
	svc := NewService(testSecret, 0)

	raw, err := svc.Issue(Claims{Username: "admin", UserID: 1, Role: "admin"}, -time.Minute)
	require.NoError(t, err)

	// inspect the stamped expiry without signature verification
	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(raw, &claims)
	require.NoError(t, err)
	require.True(t, claims.ExpiresAt.Before(time.Now()),
		"negative ttl must not fall back to the service default")
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService(testSecret, 0)

	raw, err := svc.Issue(Claims{Username: "admin", UserID: 1, Role: "admin"}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService([]byte("one-secret"), 0)
	verifier := NewService([]byte("another-secret"), 0)

	raw, err := issuer.Issue(Claims{Username: "admin", UserID: 1, Role: "admin"}, 0)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyMissingRequiredClaims(t *testing.T) {
	svc := NewService(testSecret, 0)

	noID, err := svc.Issue(Claims{Username: "admin", Role: "admin"}, 0)
	require.NoError(t, err)
	_, err = svc.Verify(noID)
	require.ErrorIs(t, err, ErrInvalid)

	noIdentity, err := svc.Issue(Claims{UserID: 7, Role: "admin"}, 0)
	require.NoError(t, err)
	_, err = svc.Verify(noIdentity)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestUnconfiguredService(t *testing.T) {
	svc := NewService(nil, 0)

	_, err := svc.Issue(Claims{Username: "admin", UserID: 1}, 0)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.Verify("whatever")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestEmailOnlyIdentity(t *testing.T) {
	svc := NewService(testSecret, 0)

	raw, err := svc.Issue(Claims{Email: "admin@school.edu", UserID: 2, Role: "editor"}, 0)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "admin@school.edu", claims.Email)
	require.Equal(t, "editor", claims.Role)
}
