package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestVerifier(t *testing.T, cfg Config) *Verifier {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	v, err := NewVerifier(cfg)
	require.NoError(t, err)
	return v
}

func TestNewVerifier_WeakSecret(t *testing.T) {
	_, err := NewVerifier(Config{Secret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier(t, Config{Issuer: "ops", Audience: "marketsync"})

	token, err := v.Issue("scheduler-bot", time.Hour, ScopeImportRead, ScopeImportWrite)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler-bot", claims.Subject)
	assert.Equal(t, []string{ScopeImportRead, ScopeImportWrite}, claims.Scopes())
	assert.True(t, claims.HasScope(ScopeImportWrite))
	assert.False(t, claims.HasScope("admin"))
	assert.NotEmpty(t, claims.ID)
}

func TestVerifier_Rejects(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, Config{Issuer: "ops", Audience: "marketsync"})
	v.now = func() time.Time { return now }

	valid, err := v.Issue("bot", time.Hour, ScopeImportRead)
	require.NoError(t, err)

	otherKey := newTestVerifier(t, Config{Secret: testSecret + "-rotated", Issuer: "ops", Audience: "marketsync"})
	otherKey.now = v.now
	forged, err := otherKey.Issue("bot", time.Hour, ScopeImportWrite)
	require.NoError(t, err)

	otherIssuer := newTestVerifier(t, Config{Issuer: "someone-else", Audience: "marketsync"})
	otherIssuer.now = v.now
	wrongIssuer, err := otherIssuer.Issue("bot", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "ops", Audience: jwt.ClaimStrings{"marketsync"}},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{"garbage", "not-a-token", now, ErrInvalidToken},
		{"other signing key", forged, now, ErrInvalidToken},
		{"other issuer", wrongIssuer, now, ErrInvalidToken},
		{"unsigned", none, now, ErrInvalidToken},
		{"no expiry", noExpiry, now, ErrInvalidToken},
		{"expired", valid, now.Add(2 * time.Hour), ErrExpiredToken},
		{"issued in the future", valid, now.Add(-time.Minute), ErrTokenNotYetValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.now = func() time.Time { return tt.at }
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifier_Leeway(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, Config{Leeway: time.Minute})
	v.now = func() time.Time { return now }

	token, err := v.Issue("bot", time.Hour)
	require.NoError(t, err)

	v.now = func() time.Time { return now.Add(time.Hour + 30*time.Second) }
	_, err = v.Verify(token)
	assert.NoError(t, err)
}
