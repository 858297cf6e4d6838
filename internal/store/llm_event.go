package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	columnID, columnSequence, columnTimestamp,
	"provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := builder().Insert(tableLLMEvents).
		Columns(llmEventColumns[1:]...).
		Values(seqNum, time.Now().UTC(),
			data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	s := builder().Select(llmEventColumns...).From(entsql.Table(tableLLMEvents))
	q, args := applyQueryOpts(s, opts).Query()
	events, err := r.scanLLMEvents(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	s := builder().Select(llmEventColumns...).From(entsql.Table(tableLLMEvents))
	q, args := s.Where(entsql.EQ(s.C(columnID), id)).Query()
	events, err := r.scanLLMEvents(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) scanLLMEvents(ctx context.Context, q string, args []any) ([]LLMEventRecord, error) {
	var out []LLMEventRecord
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var e LLMEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp,
			&e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens,
			&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "model")
}

// llmUsage aggregates token counts and latency grouped by column.
func (r *eventRepo) llmUsage(ctx context.Context, column string) ([]LLMUsage, error) {
	t := entsql.Table(tableLLMEvents)
	s := builder().Select(
		t.C(column),
		entsql.Count("*"),
		entsql.As("COALESCE(SUM("+t.C("input_tokens")+"), 0)", "input"),
		entsql.As("COALESCE(SUM("+t.C("output_tokens")+"), 0)", "output"),
		entsql.As("CAST(COALESCE(AVG("+t.C("latency_ms")+"), 0) AS INTEGER)", "latency"),
	).From(t).GroupBy(t.C(column)).OrderBy(t.C(column))
	q, args := s.Query()

	var out []LLMUsage
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var u LLMUsage
		if err := rows.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage by %s: %w", column, err)
	}
	return out, nil
}
