package repository

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	jewelbot "github.com/set-night/jewelbot"
	"github.com/set-night/jewelbot/internal/domain"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func testPool(t *testing.T) *SelectionRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	migrations, err := fs.Sub(jewelbot.MigrationsFS, "migrations")
	if err != nil {
		t.Fatalf("sub migrations: %v", err)
	}
	if err := RunMigrations(url, migrations); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, "TRUNCATE selection_events"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewSelectionRepository(pool)
}

func TestSelectionRepository(t *testing.T) {
	repo := testPool(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	ring := domain.Product{ID: "p1", Name: "Ring", Price: decimal.NewNullDecimal(decimal.RequireFromString("100.50"))}
	chain := domain.Product{ID: "p2", Name: "Chain"}
	for _, ev := range []SelectionEvent{
		{ChatID: 1, Product: ring},
		{ChatID: 2, Product: ring},
		{ChatID: 1, Product: chain},
	} {
		if err := repo.Record(ctx, ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	top, err := repo.TopSelections(ctx, since, 10)
	if err != nil {
		t.Fatalf("TopSelections failed: %v", err)
	}
	if len(top) != 2 || top[0].ProductID != "p1" || top[0].Picks != 2 {
		t.Errorf("TopSelections = %+v", top)
	}

	totals, err := repo.Totals(ctx, since)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Picks != 3 || totals.Chats != 2 || !totals.Value.Equal(decimal.RequireFromString("201")) {
		t.Errorf("Totals = %+v", totals)
	}
}
