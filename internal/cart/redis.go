package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

const maxWatchRetries = 3

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 7 * 24 * time.Hour,
		now:     time.Now,
	}
}

type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
	now     func() time.Time
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*d.Cart, error) {
	return get(ctx, r.client, userID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func get(ctx context.Context, c getter, userID string) (*d.Cart, error) {
	data, err := c.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart d.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}
	return &cart, nil
}

// SetQuantity runs an optimistic read-modify-write under WATCH so concurrent
// edits of the same cart never lose a line.
func (r *RedisStore) SetQuantity(ctx context.Context, userID string, productID int64, quantity int) (*d.Cart, error) {
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	key := cartKey(userID)

	var result *d.Cart
	txf := func(tx *redis.Tx) error {
		cart, err := get(ctx, tx, userID)
		if errors.Is(err, ErrCartNotFound) {
			cart = &d.Cart{UserID: userID, CreatedAt: r.now()}
		} else if err != nil {
			return err
		}

		now := r.now()
		apply(cart, productID, quantity, now)
		cart.UpdatedAt = now

		if len(cart.Items) == 0 {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
		} else {
			payload, mErr := json.Marshal(cart)
			if mErr != nil {
				return fmt.Errorf("marshal cart failed: %w", mErr)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, r.ttl())
				return nil
			})
		}
		if err != nil {
			return err
		}
		result = cart
		return nil
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrCartNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return nil, ErrCartBusy
}

func apply(cart *d.Cart, productID int64, quantity int, now time.Time) {
	for i, item := range cart.Items {
		if item.ProductID != productID {
			continue
		}
		if quantity <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = quantity
		}
		return
	}
	if quantity > 0 {
		cart.Items = append(cart.Items, d.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now})
	}
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(60)) * time.Minute
	return r.baseTTL + jitter
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
