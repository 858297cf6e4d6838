package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var childColumns = []string{columnID, "name", "birth_year", "notes", "created_at"}

// childRepo implements ChildRepo.
type childRepo struct {
	drv *entsql.Driver
}

func (r *childRepo) Create(ctx context.Context, c *Child) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("child name is required")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	q, args := builder().Insert(tableChildren).
		Columns(childColumns...).
		Values(c.ID, c.Name, c.BirthYear, c.Notes, c.CreatedAt).
		Query()
	if _, err := exec(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

func (r *childRepo) Get(ctx context.Context, id string) (*Child, error) {
	return r.first(ctx, entsql.EQ(columnID, id))
}

func (r *childRepo) FindByName(ctx context.Context, name string) (*Child, error) {
	return r.first(ctx, entsql.EQ("name", strings.TrimSpace(name)))
}

func (r *childRepo) first(ctx context.Context, p *entsql.Predicate) (*Child, error) {
	s := builder().Select(childColumns...).From(entsql.Table(tableChildren)).Where(p).Limit(1)
	q, args := s.Query()

	children, err := r.scan(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query child: %w", err)
	}
	if len(children) == 0 {
		return nil, ErrNotFound
	}
	return &children[0], nil
}

func (r *childRepo) List(ctx context.Context) ([]Child, error) {
	q, args := builder().Select(childColumns...).
		From(entsql.Table(tableChildren)).
		OrderBy("name").
		Query()
	children, err := r.scan(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

func (r *childRepo) Delete(ctx context.Context, id string) error {
	q, args := builder().Delete(tableChildren).Where(entsql.EQ(columnID, id)).Query()
	res, err := exec(ctx, r.drv, q, args)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *childRepo) scan(ctx context.Context, q string, args []any) ([]Child, error) {
	var out []Child
	err := query(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var c Child
		if err := rows.Scan(&c.ID, &c.Name, &c.BirthYear, &c.Notes, &c.CreatedAt); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}
