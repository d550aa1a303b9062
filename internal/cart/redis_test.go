package cart

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisStore on top of it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestGet_NotFound(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestGet_InvalidJSON(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cartKey("user123"), "not json"))

	_, err := store.Get(context.Background(), "user123")
	assert.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSetQuantity_CreatesCart(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	cart, err := store.SetQuantity(ctx, "user123", 1, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	raw, err := mr.Get(cartKey("user123"))
	require.NoError(t, err)
	var stored d.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "user123", stored.UserID)

	ttl := mr.TTL(cartKey("user123"))
	assert.GreaterOrEqual(t, ttl, 7*24*time.Hour)
	assert.Less(t, ttl, 7*24*time.Hour+time.Hour)
}

func TestSetQuantity_UpdatesKeepingOrder(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.SetQuantity(ctx, "user123", 1, 2)
	require.NoError(t, err)
	_, err = store.SetQuantity(ctx, "user123", 2, 1)
	require.NoError(t, err)
	_, err = store.SetQuantity(ctx, "user123", 1, 5)
	require.NoError(t, err)

	cart, err := store.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, cart.ProductIDs())
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestSetQuantity_NonPositiveRemovesLine(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.SetQuantity(ctx, "user123", 1, 2)
	require.NoError(t, err)
	_, err = store.SetQuantity(ctx, "user123", 2, 1)
	require.NoError(t, err)

	cart, err := store.SetQuantity(ctx, "user123", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, cart.ProductIDs())

	cart, err = store.SetQuantity(ctx, "user123", 2, -1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.False(t, mr.Exists(cartKey("user123")))
}

func TestSetQuantity_RemoveMissingLineIsNoop(t *testing.T) {
	store, _ := setupTestRedis(t)

	cart, err := store.SetQuantity(context.Background(), "user123", 9, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestSetQuantity_RejectsHugeQuantity(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.SetQuantity(context.Background(), "user123", 1, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSetQuantity_ConcurrentEditsKeepAllLines(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := int64(1); id <= 3; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for {
				_, err := store.SetQuantity(ctx, "user123", id, 1)
				if err == nil {
					return
				}
				assert.ErrorIs(t, err, ErrCartBusy)
			}
		}(id)
	}
	wg.Wait()

	cart, err := store.Get(ctx, "user123")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, cart.ProductIDs())
}

func TestClear(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.SetQuantity(ctx, "user123", 1, 2)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "user123"))
	assert.False(t, mr.Exists(cartKey("user123")))

	require.NoError(t, store.Clear(ctx, "nobody"))
}

func TestRedisDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "user123")
	assert.ErrorContains(t, err, "redis get failed")
	assert.Error(t, store.Ping(context.Background()))
}
