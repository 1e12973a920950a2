package service

import (
	"testing"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

func TestCartCache(t *testing.T) {
	c := NewCartCache(time.Hour)
	if c.Get() != nil {
		t.Fatal("empty cache returned products")
	}

	c.Set([]domain.Product{{ID: "p1"}})
	got := c.Get()
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("Get = %+v", got)
	}
	got[0].ID = "mutated"
	if c.Get()[0].ID != "p1" {
		t.Error("Get exposed the cached slice")
	}

	// an empty cart is still a cached answer
	c.Set(nil)
	if got := c.Get(); got == nil || len(got) != 0 {
		t.Errorf("cached empty cart = %#v", got)
	}

	c.Invalidate()
	if c.Get() != nil {
		t.Error("Invalidate kept products")
	}

	expired := NewCartCache(-time.Second)
	expired.Set([]domain.Product{{ID: "p1"}})
	if expired.Get() != nil {
		t.Error("expired entry returned")
	}
}
