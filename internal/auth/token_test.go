package auth

import (
	"testing"
	"time"

	"receipts/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret")

	access, err := svc.IssueAccess("alice")
	require.NoError(t, err)
	sub, err := svc.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	refresh, err := svc.IssueRefresh("alice")
	require.NoError(t, err)
	sub, err = svc.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestTokenService_ScopeMismatch(t *testing.T) {
	svc := NewTokenService("secret")
	pair, err := svc.IssuePair("alice")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	_, err = svc.ParseAccess(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidScope)
	assert.Equal(t, "Invalid scope for token", apperror.MessageOf(err))

	_, err = svc.ParseRefresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidScope)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestTokenService_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", WithClock(clock.Now), WithTTLs(time.Minute, time.Hour))

	access, err := svc.IssueAccess("alice")
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh("alice")
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = svc.ParseAccess(access)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "Could not validate credentials", apperror.MessageOf(err))

	_, err = svc.ParseRefresh(refresh)
	require.NoError(t, err)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenService("one").IssueAccess("alice")
	require.NoError(t, err)

	_, err = NewTokenService("two").ParseAccess(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService("one").ParseAccess("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_UniqueWithinSecond(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", WithClock(clock.Now))

	a, err := svc.IssueRefresh("alice")
	require.NoError(t, err)
	b, err := svc.IssueRefresh("alice")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secretP1")
	require.NoError(t, err)
	assert.NotEqual(t, "secretP1", hash)
	assert.True(t, CheckPassword(hash, "secretP1"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
