package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type snapshotRepo struct {
	drv *entsql.Driver
}

// newestFirst orders snapshots by time, breaking ties by insertion.
func newestFirst(s *entsql.Selector) *entsql.Selector {
	return s.OrderBy(entsql.Desc(s.C(columnTimestamp)), entsql.Desc(s.C(columnID)))
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	q, args := builder().Insert(tableSnapshots).
		Columns(columnSequence, columnTimestamp, "data").
		Values(snap.Sequence, snap.Timestamp.UTC(), string(data)).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns nil, nil when nothing has been saved.
func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	s := builder().Select(columnID, columnSequence, columnTimestamp, "data").From(entsql.Table(tableSnapshots))
	q, args := newestFirst(s).Limit(1).Query()

	var (
		snap *Snapshot
		raw  string
	)
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		snap = &Snapshot{}
		return rows.Scan(&snap.ID, &snap.Sequence, &snap.Timestamp, &raw)
	})
	if err != nil || snap == nil {
		if err != nil {
			err = fmt.Errorf("latest snapshot: %w", err)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
	}
	return snap, nil
}

// Prune deletes all but the keep newest snapshots.
func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	kept := newestFirst(builder().Select(columnID).From(entsql.Table(tableSnapshots))).Limit(max(keep, 0))
	q, args := builder().Delete(tableSnapshots).
		Where(entsql.Not(entsql.In(columnID, kept))).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
