package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/macrograph/pkg/adapters/redis"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)

	store := redis.NewFromClient(client)
	ports.RunMacroStoreContract(t, store)
}

func TestRedisStore_Keys(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractMacro("wave")))

	assert.True(t, mr.Exists("test:macro:wave"))
	members, err := mr.ZMembers("test:macros")
	require.NoError(t, err)
	assert.Equal(t, []string{"wave"}, members)

	raw, err := mr.Get("test:macro:wave")
	require.NoError(t, err)
	assert.Contains(t, raw, `"activationPhrases"`, "stored as a macro document")
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractMacro("short-lived")))

	_, err := store.Load(ctx, "short-lived")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "short-lived")
	assert.ErrorIs(t, err, domain.ErrMacroNotFound)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set("macrograph:macro:broken", "{not json"))

	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrMacroNotFound)
}
