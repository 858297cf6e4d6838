// Package screens holds what every AutiSmart screen shares: the stores,
// sinks and services a screen may need, and the currently selected child.
package screens

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/games"
	"github.com/autismart/autismart/internal/insights"
	"github.com/autismart/autismart/internal/store"
)

// Env is the dependency set passed to screens. Screens share one *Env, so
// selecting a child on one screen is visible to the rest.
type Env struct {
	Catalog    *catalog.Catalog
	Children   store.ChildRepo
	Activities store.ActivityRepo
	Events     store.EventRepo
	Snapshots  store.SnapshotRepo

	// Sink receives finished assessments and games. It usually fans out
	// to the activity repo, metrics and the message broker.
	Sink activity.Sink

	// Insights is nil when guidance is disabled.
	Insights *insights.Service
	Logger   *zap.Logger

	// Child is the active child, nil until one is picked.
	Child *store.Child

	// LatestVersion reports a newer release, or "" when up to date. Nil
	// skips the check.
	LatestVersion func(ctx context.Context) (string, error)

	Now  func() time.Time
	Seed func() uint64
}

// ChildID returns the active child's ID, or "".
func (e *Env) ChildID() string {
	if e.Child == nil {
		return ""
	}
	return e.Child.ID
}

// ChildName returns the active child's name, or "".
func (e *Env) ChildName() string {
	if e.Child == nil {
		return ""
	}
	return e.Child.Name
}

// Log returns the logger, never nil.
func (e *Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Clock returns the current time.
func (e *Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Rand returns a fresh game random source.
func (e *Env) Rand() *rand.Rand {
	if e.Seed == nil {
		return games.NewRand(0)
	}
	return games.NewRand(e.Seed())
}

// Record sends rec to the sink, stamping it with the clock. Failures are
// logged; the screen flow never blocks on them.
func (e *Env) Record(rec activity.Record) error {
	if e.Sink == nil {
		return nil
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = e.Clock()
	}
	err := e.Sink.Record(context.Background(), rec)
	if err != nil {
		e.Log().Error("record activity",
			zap.String("type", string(rec.Type)),
			zap.String("name", rec.Name),
			zap.Error(err))
	}
	return err
}
