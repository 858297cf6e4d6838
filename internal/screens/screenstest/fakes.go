// Package screenstest provides in-memory repositories for screen tests.
package screenstest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/store"
)

// Children is an in-memory store.ChildRepo.
type Children struct {
	mu   sync.Mutex
	rows []store.Child
	next int
}

func (c *Children) Create(_ context.Context, child *store.Child) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if strings.EqualFold(r.Name, child.Name) {
			return fmt.Errorf("child %q already exists", child.Name)
		}
	}
	c.next++
	child.ID = fmt.Sprintf("child-%d", c.next)
	c.rows = append(c.rows, *child)
	return nil
}

func (c *Children) Get(_ context.Context, id string) (*store.Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *Children) FindByName(_ context.Context, name string) (*store.Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if strings.EqualFold(r.Name, name) {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *Children) List(_ context.Context) ([]store.Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows), nil
}

func (c *Children) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = slices.DeleteFunc(c.rows, func(r store.Child) bool { return r.ID == id })
	return nil
}

// Activities is an in-memory store.ActivityRepo. It also serves as the
// activity sink.
type Activities struct {
	mu   sync.Mutex
	Recs []activity.Record
}

func (a *Activities) Record(_ context.Context, rec activity.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec.ID = int64(len(a.Recs) + 1)
	a.Recs = append(a.Recs, rec)
	return nil
}

// Query returns matching records newest first.
func (a *Activities) Query(_ context.Context, f store.ActivityFilter) ([]activity.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []activity.Record
	for i := len(a.Recs) - 1; i >= 0; i-- {
		r := a.Recs[i]
		if f.ChildID != "" && r.ChildID != f.ChildID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Count returns how many records were stored.
func (a *Activities) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Recs)
}

// Events is an in-memory store.EventRepo that keeps answer and session
// events. LLM events are ignored.
type Events struct {
	mu       sync.Mutex
	Answers  []store.AnswerEventData
	Sessions []store.SessionEventData
}

func (e *Events) AppendAnswerEvent(_ context.Context, data store.AnswerEventData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Answers = append(e.Answers, data)
	return nil
}

func (e *Events) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Sessions = append(e.Sessions, data)
	return nil
}

func (e *Events) QueryAnswerEvents(_ context.Context, sessionID string) ([]store.AnswerEventRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []store.AnswerEventRecord
	for i, a := range e.Answers {
		if a.SessionID == sessionID {
			out = append(out, store.AnswerEventRecord{ID: i + 1, Sequence: int64(i + 1), AnswerEventData: a})
		}
	}
	return out, nil
}

func (e *Events) QuerySessionEvents(_ context.Context, _ store.QueryOpts) ([]store.SessionEventRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []store.SessionEventRecord
	for i := len(e.Sessions) - 1; i >= 0; i-- {
		out = append(out, store.SessionEventRecord{ID: i + 1, Sequence: int64(i + 1), SessionEventData: e.Sessions[i]})
	}
	return out, nil
}

// Actions returns the recorded session actions in order.
func (e *Events) Actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.Sessions))
	for i, s := range e.Sessions {
		out[i] = s.Action
	}
	return out
}

func (e *Events) AppendLLMRequest(context.Context, store.LLMRequestEventData) error { return nil }

func (e *Events) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEventRecord, error) {
	return nil, nil
}

func (e *Events) GetLLMEvent(context.Context, int) (*store.LLMEventRecord, error) { return nil, nil }
func (e *Events) LLMUsageByPurpose(context.Context) ([]store.LLMUsage, error) { return nil, nil }
func (e *Events) LLMUsageByModel(context.Context) ([]store.LLMUsage, error) { return nil, nil }

// Snapshots is an in-memory store.SnapshotRepo.
type Snapshots struct {
	mu    sync.Mutex
	Saved []*store.Snapshot
}

func (s *Snapshots) Save(_ context.Context, snap *store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = len(s.Saved) + 1
	s.Saved = append(s.Saved, snap)
	return nil
}

func (s *Snapshots) Latest(_ context.Context) (*store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Saved) == 0 {
		return nil, nil
	}
	return s.Saved[len(s.Saved)-1], nil
}

func (s *Snapshots) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Saved) > keep {
		s.Saved = s.Saved[len(s.Saved)-keep:]
	}
	return nil
}

// Fixture bundles an Env with the fakes behind it.
type Fixture struct {
	Env        *screens.Env
	Children   *Children
	Activities *Activities
	Events     *Events
	Snapshots  *Snapshots
}

// Now is the fixed clock used by NewFixture.
var Now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// NewFixture returns an Env over empty fakes with the default catalog, a
// fixed clock and a fixed game seed. No child is selected.
func NewFixture() *Fixture {
	f := &Fixture{
		Children:   &Children{},
		Activities: &Activities{},
		Events:     &Events{},
		Snapshots:  &Snapshots{},
	}
	f.Env = &screens.Env{
		Catalog:    catalog.Default(),
		Children:   f.Children,
		Activities: f.Activities,
		Events:     f.Events,
		Snapshots:  f.Snapshots,
		Sink:       f.Activities,
		Now:        func() time.Time { return Now },
		Seed:       func() uint64 { return 42 },
	}
	return f
}

// WithChild adds a child named name and selects it.
func (f *Fixture) WithChild(name string) *Fixture {
	c := &store.Child{Name: name, CreatedAt: Now}
	if err := f.Children.Create(context.Background(), c); err != nil {
		panic(err)
	}
	f.Env.Child = c
	return f
}
