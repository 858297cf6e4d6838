package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var answerEventColumns = []string{
	columnID, columnSequence, columnTimestamp, columnSessionID, columnChildID,
	"question_id", "category", "level", "option_index", "score",
}

var sessionEventColumns = []string{
	columnID, columnSequence, columnTimestamp, columnSessionID, columnChildID,
	"action", "answered", "total_score", "support_level",
}

// eventRepo implements EventRepo backed by the global sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequence
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := builder().Insert(tableAnswerEvents).
		Columns(answerEventColumns[1:]...).
		Values(seqNum, time.Now().UTC(), data.SessionID, nullString(data.ChildID),
			data.QuestionID, data.Category, data.Level, data.OptionIndex, data.Score).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := builder().Insert(tableSessionEvents).
		Columns(sessionEventColumns[1:]...).
		Values(seqNum, time.Now().UTC(), data.SessionID, nullString(data.ChildID),
			data.Action, data.Answered, data.TotalScore, data.SupportLevel).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

// QueryAnswerEvents returns a session's answer events in the order they
// were recorded. Re-answered questions appear once per selection.
func (r *eventRepo) QueryAnswerEvents(ctx context.Context, sessionID string) ([]AnswerEventRecord, error) {
	s := builder().Select(answerEventColumns...).From(entsql.Table(tableAnswerEvents))
	s.Where(entsql.EQ(s.C(columnSessionID), sessionID)).OrderBy(s.C(columnSequence))
	q, args := s.Query()

	var out []AnswerEventRecord
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var (
			e       AnswerEventRecord
			childID *string
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &childID,
			&e.QuestionID, &e.Category, &e.Level, &e.OptionIndex, &e.Score); err != nil {
			return err
		}
		if childID != nil {
			e.ChildID = *childID
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	s := builder().Select(sessionEventColumns...).From(entsql.Table(tableSessionEvents))
	q, args := applyQueryOpts(s, opts).Query()

	var out []SessionEventRecord
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var (
			e       SessionEventRecord
			childID *string
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &childID,
			&e.Action, &e.Answered, &e.TotalScore, &e.SupportLevel); err != nil {
			return err
		}
		if childID != nil {
			e.ChildID = *childID
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}
