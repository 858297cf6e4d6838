package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/autismart/autismart/internal/activity"
)

var activityColumns = []string{
	columnID, columnSequence, columnTimestamp, columnChildID,
	"activity_type", "activity_name", "score", "max_score", "percentage",
	"duration_ms", "correct_answers", "incorrect_answers", "details",
}

// activityRepo implements ActivityRepo backed by the global sequence counter.
type activityRepo struct {
	drv *entsql.Driver
	seq *sequence
}

func (r *activityRepo) Record(ctx context.Context, rec activity.Record) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	details := []byte("{}")
	if len(rec.Details) > 0 {
		details, err = json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
	}

	q, args := builder().Insert(tableActivities).
		Columns(activityColumns[1:]...).
		Values(
			seqNum, rec.RecordedAt.UTC(), nullString(rec.ChildID),
			string(rec.Type), rec.Name, rec.Score, rec.MaxScore, rec.Percentage,
			rec.Duration.Milliseconds(), rec.CorrectAnswers, rec.IncorrectAnswers, string(details),
		).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

func (r *activityRepo) Query(ctx context.Context, f ActivityFilter) ([]activity.Record, error) {
	s := builder().Select(activityColumns...).From(entsql.Table(tableActivities))
	if f.ChildID != "" {
		s.Where(entsql.EQ(s.C(columnChildID), f.ChildID))
	}
	if f.Type != "" {
		s.Where(entsql.EQ(s.C("activity_type"), string(f.Type)))
	}
	q, args := applyQueryOpts(s, f.QueryOpts).Query()

	var out []activity.Record
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var (
			rec        activity.Record
			seq        int64
			childID    *string
			typ        string
			durationMs int64
			details    string
		)
		if err := rows.Scan(
			&rec.ID, &seq, &rec.RecordedAt, &childID,
			&typ, &rec.Name, &rec.Score, &rec.MaxScore, &rec.Percentage,
			&durationMs, &rec.CorrectAnswers, &rec.IncorrectAnswers, &details,
		); err != nil {
			return err
		}
		if childID != nil {
			rec.ChildID = *childID
		}
		rec.Type = activity.Type(typ)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &rec.Details); err != nil {
				return fmt.Errorf("decode details of activity %d: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return out, nil
}
