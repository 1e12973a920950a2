package service

import (
	"sync"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

// CartCache holds the last server cart listing for a short time.
type CartCache struct {
	mu       sync.RWMutex
	products []domain.Product
	cachedAt time.Time
	ttl      time.Duration
}

func NewCartCache(ttl time.Duration) *CartCache {
	return &CartCache{ttl: ttl}
}

func (c *CartCache) Get() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.products == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *CartCache) Set(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(make([]domain.Product, 0, len(products)), products...)
	c.cachedAt = time.Now()
}

// Invalidate drops the cached listing, e.g. after a selection changed it.
func (c *CartCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
}
