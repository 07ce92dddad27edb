package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_GenerateParse(t *testing.T) {
	t.Parallel()
	m := NewManager("secret", time.Hour)

	token, exp, err := m.Generate("jdoe", "manager")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "jdoe", claims.Profile.Username)
	require.Equal(t, "manager", claims.Profile.Role)
}

func TestManager_Parse(t *testing.T) {
	t.Parallel()
	m := NewManager("secret", time.Hour)
	token, _, err := m.Generate("jdoe", "admin")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := NewManager("other", time.Hour).Parse(token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not.a.token")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})
	t.Run("expired", func(t *testing.T) {
		old := NewManager("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, _, err := old.Generate("jdoe", "admin")
		require.NoError(t, err)
		_, err = m.Parse(expired)
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestAuthContext(t *testing.T) {
	t.Parallel()
	_, ok := GetUserName(context.Background())
	require.False(t, ok)

	ctx := SetAuthContext(context.Background(), "jdoe", "librarian")
	name, ok := GetUserName(ctx)
	require.True(t, ok)
	require.Equal(t, "jdoe", name)
	role, ok := GetRole(ctx)
	require.True(t, ok)
	require.Equal(t, "librarian", role)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	t.Parallel()
	m := NewManager("secret", 0)
	require.Equal(t, DefaultTTL, m.ttl)
	require.Equal(t, 24*time.Hour, m.ttl)
}
