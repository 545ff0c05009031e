package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func TestTokenAcceptedUntilExpiry(t *testing.T) {
	clock := newClock()
	tokens := NewTokenService("secret", time.Hour).WithClock(clock.Now)

	signed, expiresAt, err := tokens.Issue("T1", "ref-1")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), expiresAt)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "T1", claims.TeacherID)
	assert.Equal(t, "ref-1", claims.Ref)
	assert.NotEmpty(t, claims.ID)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Verify(signed)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSignedWithOtherKeyRejected(t *testing.T) {
	clock := newClock()
	foreign, _, err := NewTokenService("other-secret", time.Hour).WithClock(clock.Now).Issue("T1", "ref-1")
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).WithClock(clock.Now).Verify(foreign)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenMalformed(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := tokens.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, raw)
	}
}

func TestTokenAlgNoneRejected(t *testing.T) {
	now := time.Now()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		TeacherID:        "T1",
		Ref:              "ref-1",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenMissingIdentityRejected(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		TeacherID:        "T1",
	})
	raw, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{TeacherID: "T1", Ref: "ref-1"})
	raw, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
