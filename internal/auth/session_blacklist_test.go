package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBlacklist(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	exp := time.Now().Add(time.Hour)

	isBlacklisted, err := store.IsBlacklisted("unknown-token")
	assert.NoError(t, err)
	assert.False(t, isBlacklisted)

	assert.NoError(t, store.AddToBlacklist("revoked-token", exp))

	isBlacklisted, err = store.IsBlacklisted("revoked-token")
	assert.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func TestInMemoryBlacklistCleanUpExpired(t *testing.T) {
	store := NewInMemoryBlacklistStore()

	assert.NoError(t, store.AddToBlacklist("expired-1", time.Now().Add(-time.Hour)))
	assert.NoError(t, store.AddToBlacklist("expired-2", time.Now().Add(-time.Minute)))
	assert.NoError(t, store.AddToBlacklist("valid", time.Now().Add(time.Hour)))

	store.CleanUpExpired()

	for token, want := range map[string]bool{"expired-1": false, "expired-2": false, "valid": true} {
		got, err := store.IsBlacklisted(token)
		assert.NoError(t, err)
		assert.Equal(t, want, got, token)
	}
}

func TestInMemoryBlacklistConcurrentAccess(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	exp := time.Now().Add(time.Hour)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			token := "token-" + string(rune('a'+id))
			assert.NoError(t, store.AddToBlacklist(token, exp))
			_, err := store.IsBlacklisted(token)
			assert.NoError(t, err)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func newMiniredisStore(t *testing.T) (*RedisBlacklistStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisBlacklistStore(client), mr
}

func TestRedisBlacklist(t *testing.T) {
	store, _ := newMiniredisStore(t)

	isBlacklisted, err := store.IsBlacklisted("unknown-token")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)

	require.NoError(t, store.AddToBlacklist("revoked-token", time.Now().Add(time.Hour)))

	isBlacklisted, err = store.IsBlacklisted("revoked-token")
	require.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func TestRedisBlacklistEntryExpires(t *testing.T) {
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.AddToBlacklist("revoked-token", time.Now().Add(time.Minute)))

	// Redis owns expiry; advance its clock past the token's TTL.
	mr.FastForward(2 * time.Minute)

	isBlacklisted, err := store.IsBlacklisted("revoked-token")
	require.NoError(t, err)
	assert.False(t, isBlacklisted)
}

func TestRedisBlacklistSkipsExpiredTokens(t *testing.T) {
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.AddToBlacklist("already-expired", time.Now().Add(-time.Minute)))
	assert.Empty(t, mr.Keys(), "tokens past expiry are not stored")
}
