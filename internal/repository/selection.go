package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/set-night/jewelbot/internal/domain"
)

// SelectionEvent is one product pick recorded for analytics.
type SelectionEvent struct {
	ChatID   int64
	Username string
	Product  domain.Product
}

type SelectionStat struct {
	ProductID   string
	ProductName string
	Picks       int64
	LastPicked  time.Time
}

type SelectionRepository struct {
	pool *pgxpool.Pool
}

func NewSelectionRepository(pool *pgxpool.Pool) *SelectionRepository {
	return &SelectionRepository{pool: pool}
}

const insertSelection = `
INSERT INTO selection_events (chat_id, username, product_id, product_name, price)
VALUES ($1, $2, $3, $4, $5)`

func (r *SelectionRepository) Record(ctx context.Context, ev SelectionEvent) error {
	// NullDecimal is a driver.Valuer; an unknown price is stored as NULL.
	_, err := r.pool.Exec(ctx, insertSelection,
		ev.ChatID, ev.Username, ev.Product.ID, ev.Product.Name, ev.Product.Price)
	if err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}
	return nil
}

const topSelections = `
SELECT product_id, max(product_name), count(*), max(created_at)
FROM selection_events
WHERE created_at >= $1
GROUP BY product_id
ORDER BY count(*) DESC, max(created_at) DESC
LIMIT $2`

// TopSelections returns the most picked products since the given time.
func (r *SelectionRepository) TopSelections(ctx context.Context, since time.Time, limit int) ([]SelectionStat, error) {
	rows, err := r.pool.Query(ctx, topSelections, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query top selections: %w", err)
	}
	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SelectionStat, error) {
		var s SelectionStat
		err := row.Scan(&s.ProductID, &s.ProductName, &s.Picks, &s.LastPicked)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan top selections: %w", err)
	}
	return stats, nil
}

const selectionTotals = `
SELECT count(*), count(DISTINCT chat_id), coalesce(sum(price), 0)::text
FROM selection_events
WHERE created_at >= $1`

type SelectionTotals struct {
	Picks int64
	Chats int64
	Value decimal.Decimal
}

// Totals summarises picks since the given time.
func (r *SelectionRepository) Totals(ctx context.Context, since time.Time) (SelectionTotals, error) {
	var (
		t     SelectionTotals
		value string
	)
	if err := r.pool.QueryRow(ctx, selectionTotals, since).Scan(&t.Picks, &t.Chats, &value); err != nil {
		return SelectionTotals{}, fmt.Errorf("query selection totals: %w", err)
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return SelectionTotals{}, fmt.Errorf("parse selection value: %w", err)
	}
	t.Value = v
	return t, nil
}
