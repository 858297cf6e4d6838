package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

const tableSequence = "global_sequence"

// sequence numbers every activity and event row from one counter so
// rows from different tables can be merged in order.
type sequence struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := query(ctx, s.drv,
		`UPDATE `+tableSequence+` SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`, nil,
		func(rows *entsql.Rows) error { return rows.Scan(&n) })
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	return n, nil
}

// seedSequence creates the single counter row if absent.
func seedSequence(ctx context.Context, drv *entsql.Driver) error {
	_, err := exec(ctx, drv, `INSERT OR IGNORE INTO `+tableSequence+` (id, next_val) VALUES (1, 1)`, nil)
	return err
}

// applyQueryOpts narrows s by sequence, time and limit, newest first.
func applyQueryOpts(s *entsql.Selector, opts QueryOpts) *entsql.Selector {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT(s.C(columnSequence), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(s.C(columnSequence), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(s.C(columnTimestamp), opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(s.C(columnTimestamp), opts.To))
	}
	if len(preds) > 0 {
		s.Where(entsql.And(preds...))
	}
	s.OrderBy(entsql.Desc(s.C(columnSequence)))
	if opts.Limit > 0 {
		s.Limit(opts.Limit)
	}
	return s
}

// nullString stores an empty child ID as NULL so the foreign key is optional.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
