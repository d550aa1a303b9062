// Package sellers fronts the seller store for checkout reads.
package sellers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

const (
	DefaultTTL         = 30 * time.Second
	DefaultLoadTimeout = 5 * time.Second
)

type Lister interface {
	ListActiveSellers(ctx context.Context) ([]d.Seller, error)
}

// Directory serves the active seller list from a short-lived snapshot.
// Concurrent misses share one store query.
type Directory struct {
	store       Lister
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	sfg         singleflight.Group // Prevents stampede on the store

	mu       sync.RWMutex
	cached   []d.Seller
	cachedAt time.Time
}

func NewDirectory(store Lister, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Directory{
		store:       store,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
	}
}

// ListActiveSellers returns when the load finishes or ctx is done, whichever comes
// first. A cancelled caller does not cancel the shared load.
func (dir *Directory) ListActiveSellers(ctx context.Context) ([]d.Seller, error) {
	if sellers, ok := dir.fresh(); ok {
		return sellers, nil
	}

	ch := dir.sfg.DoChan("active", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dir.loadTimeout)
		defer cancel()

		sellers, err := dir.store.ListActiveSellers(loadCtx)
		if err != nil {
			return nil, err
		}
		dir.mu.Lock()
		dir.cached = sellers
		dir.cachedAt = dir.now()
		dir.mu.Unlock()
		return sellers, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]d.Seller(nil), res.Val.([]d.Seller)...), nil
	}
}

func (dir *Directory) fresh() ([]d.Seller, bool) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	if dir.cachedAt.IsZero() || dir.now().Sub(dir.cachedAt) >= dir.ttl {
		return nil, false
	}
	return append([]d.Seller(nil), dir.cached...), true
}

// Invalidate drops the snapshot so the next call reads the store.
func (dir *Directory) Invalidate() {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.cached = nil
	dir.cachedAt = time.Time{}
}
