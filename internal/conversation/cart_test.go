package conversation

import (
	"testing"

	"github.com/set-night/jewelbot/internal/domain"
	"github.com/shopspring/decimal"
)

func item(ref, name string) domain.CartItem {
	return domain.NewCartItem(product(ref, name))
}

func TestSelectionCartFirstWriteWins(t *testing.T) {
	c := NewSelectionCart()

	if !c.Add(item("p1", "Ring A")) {
		t.Fatal("first Add reported no change")
	}
	if c.Add(item("p9", "Ring A")) {
		t.Error("duplicate Add reported a change")
	}
	c.Add(item("p2", "Bracelet"))

	list := c.List()
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(list))
	}
	if list[0].ProductRef != "p1" {
		t.Errorf("kept ProductRef = %q, want first-inserted p1", list[0].ProductRef)
	}
	if list[1].Key != "Bracelet" {
		t.Errorf("order broken: list[1].Key = %q", list[1].Key)
	}
}

func TestSelectionCartDistinctKeys(t *testing.T) {
	c := NewSelectionCart()
	names := []string{"A", "B", "A", "C", "B", "A", "D"}
	for i, n := range names {
		c.Add(item(string(rune('0'+i)), n))
	}

	seen := map[string]bool{}
	for _, it := range c.List() {
		if seen[it.Key] {
			t.Errorf("duplicate key %q", it.Key)
		}
		seen[it.Key] = true
	}
	if len(seen) != 4 {
		t.Errorf("distinct keys = %d, want 4", len(seen))
	}
	if c.List()[0].ProductRef != "0" {
		t.Errorf("A kept ref %q, want 0", c.List()[0].ProductRef)
	}
}

func TestSelectionCartRemoveAndClear(t *testing.T) {
	c := NewSelectionCart()
	c.Add(item("p1", "Ring A"))
	c.Add(item("p2", "Bracelet"))

	if c.Remove("missing") {
		t.Error("Remove of unknown key reported a change")
	}
	if !c.Remove("Ring A") {
		t.Error("Remove of present key reported no change")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	// Re-adding after removal is allowed.
	if !c.Add(item("p3", "Ring A")) {
		t.Error("Add after Remove was dropped")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	c.Clear()
}

func TestSelectionCartTotal(t *testing.T) {
	c := NewSelectionCart()
	a := item("p1", "Ring A")
	a.Price = decimal.NewNullDecimal(decimal.RequireFromString("59.00"))
	b := item("p2", "Bracelet")
	b.Price = decimal.NewNullDecimal(decimal.RequireFromString("79.50"))
	c.Add(a)
	c.Add(b)
	c.Add(item("p3", "No Price"))

	want := decimal.RequireFromString("138.50")
	if got := c.Total(); !got.Equal(want) {
		t.Errorf("Total() = %s, want %s", got, want)
	}
}

func TestSelectionCartSubscribe(t *testing.T) {
	c := NewSelectionCart()
	var sizes []int
	c.Subscribe(func(items []domain.CartItem) { sizes = append(sizes, len(items)) })

	c.Add(item("p1", "A"))
	c.Add(item("p1", "A"))
	c.Add(item("p2", "B"))
	c.Remove("A")
	c.Clear()

	want := []int{1, 2, 1, 0}
	if len(sizes) != len(want) {
		t.Fatalf("notifications = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("notifications = %v, want %v", sizes, want)
			break
		}
	}
}
