package conversation

import (
	"sync"

	"github.com/set-night/jewelbot/internal/domain"
	"github.com/shopspring/decimal"
)

// SelectionCart is the deduplicated set of products a user has chosen.
// The first item added under a key wins; later adds are dropped.
type SelectionCart struct {
	mu    sync.Mutex
	items []domain.CartItem
	obs   observers[[]domain.CartItem]
}

func NewSelectionCart() *SelectionCart {
	return &SelectionCart{}
}

// Add inserts item unless its key is already present. It reports whether
// the cart changed.
func (c *SelectionCart) Add(item domain.CartItem) bool {
	c.mu.Lock()
	for _, it := range c.items {
		if it.Key == item.Key {
			c.mu.Unlock()
			return false
		}
	}
	c.items = append(c.items, item)
	snapshot := c.listLocked()
	c.mu.Unlock()

	c.obs.publish(snapshot)
	return true
}

func (c *SelectionCart) Remove(key string) bool {
	c.mu.Lock()
	idx := -1
	for i, it := range c.items {
		if it.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	snapshot := c.listLocked()
	c.mu.Unlock()

	c.obs.publish(snapshot)
	return true
}

func (c *SelectionCart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.obs.publish(nil)
}

// List returns the items in insertion order.
func (c *SelectionCart) List() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listLocked()
}

func (c *SelectionCart) listLocked() []domain.CartItem {
	return append([]domain.CartItem(nil), c.items...)
}

func (c *SelectionCart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total sums the prices of items that carry one.
func (c *SelectionCart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		if it.Price.Valid {
			total = total.Add(it.Price.Decimal)
		}
	}
	return total
}

func (c *SelectionCart) Subscribe(fn func([]domain.CartItem)) (unsubscribe func()) {
	return c.obs.add(fn)
}
