package activity

import (
	"context"
	"errors"
)

// Sink receives finished activities.
type Sink interface {
	Record(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rec Record) error

func (f SinkFunc) Record(ctx context.Context, rec Record) error { return f(ctx, rec) }

// MultiSink delivers each record to every sink in order. A failing sink
// does not stop the rest; all errors are joined.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
