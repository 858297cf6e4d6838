package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableChildren      = "children"
	tableActivities    = "activities"
	tableAnswerEvents  = "answer_events"
	tableSessionEvents = "session_events"
	tableLLMEvents     = "llm_request_events"
	tableSnapshots     = "snapshots"
	columnSequence     = "sequence"
	columnTimestamp    = "timestamp"
	columnID           = "id"
	columnChildID      = "child_id"
	columnSessionID    = "session_id"
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func intCol(name string, def ...int) *schema.Column {
	c := &schema.Column{Name: name, Type: field.TypeInt}
	if len(def) > 0 {
		c.Default = def[0]
	}
	return c
}

func textCol(name string, def ...string) *schema.Column {
	c := &schema.Column{Name: name, Type: field.TypeString}
	if len(def) > 0 {
		c.Default = def[0]
	}
	return c
}

// newEventTable starts a table with the columns every event table shares:
// a surrogate key, the global sequence number and the event time.
func newEventTable(name string) *schema.Table {
	t := schema.NewTable(name)
	t.AddPrimary(&schema.Column{Name: columnID, Type: field.TypeInt, Increment: true})
	t.AddColumn(&schema.Column{Name: columnSequence, Type: field.TypeInt64, Unique: true})
	t.AddColumn(&schema.Column{Name: columnTimestamp, Type: field.TypeTime})
	return t
}

// addChildRef adds a nullable child_id referencing children. Deleting a
// child deletes the rows that reference it.
func addChildRef(t, children *schema.Table) {
	c := &schema.Column{Name: columnChildID, Type: field.TypeString, Nullable: true}
	t.AddColumn(c)
	t.AddForeignKey(&schema.ForeignKey{
		Symbol:     t.Name + "_child",
		Columns:    []*schema.Column{c},
		RefTable:   children,
		RefColumns: []*schema.Column{children.PrimaryKey[0]},
		OnDelete:   schema.Cascade,
	})
}

// addIndexes adds one non-unique index per column, named table_column.
func addIndexes(t *schema.Table, columns ...string) {
	for _, c := range columns {
		t.AddIndex(t.Name+"_"+c, false, []string{c})
	}
}

// tables describes the whole schema. A fresh set is built per call since
// migration links columns to their indexes and keys.
func tables() []*schema.Table {
	sequence := schema.NewTable(tableSequence)
	sequence.AddPrimary(intCol(columnID))
	sequence.AddColumn(&schema.Column{Name: "next_val", Type: field.TypeInt64, Default: 1})

	children := schema.NewTable(tableChildren)
	children.AddPrimary(textCol(columnID))
	children.AddColumn(&schema.Column{Name: "name", Type: field.TypeString, Unique: true})
	children.AddColumn(intCol("birth_year", 0))
	children.AddColumn(textCol("notes", ""))
	children.AddColumn(&schema.Column{Name: "created_at", Type: field.TypeTime})

	activities := newEventTable(tableActivities)
	addChildRef(activities, children)
	activities.AddColumn(textCol("activity_type"))
	activities.AddColumn(textCol("activity_name"))
	activities.AddColumn(intCol("score"))
	activities.AddColumn(intCol("max_score"))
	activities.AddColumn(&schema.Column{Name: "percentage", Type: field.TypeFloat64})
	activities.AddColumn(&schema.Column{Name: "duration_ms", Type: field.TypeInt64, Default: 0})
	activities.AddColumn(intCol("correct_answers", 0))
	activities.AddColumn(intCol("incorrect_answers", 0))
	activities.AddColumn(textCol("details", "{}"))
	addIndexes(activities, columnChildID, "activity_type", columnTimestamp)

	answers := newEventTable(tableAnswerEvents)
	answers.AddColumn(textCol(columnSessionID))
	addChildRef(answers, children)
	answers.AddColumn(textCol("question_id"))
	answers.AddColumn(textCol("category"))
	answers.AddColumn(textCol("level"))
	answers.AddColumn(intCol("option_index"))
	answers.AddColumn(intCol("score"))
	addIndexes(answers, columnSessionID, "question_id")

	sessions := newEventTable(tableSessionEvents)
	sessions.AddColumn(textCol(columnSessionID))
	addChildRef(sessions, children)
	sessions.AddColumn(textCol("action"))
	sessions.AddColumn(intCol("answered", 0))
	sessions.AddColumn(intCol("total_score", 0))
	sessions.AddColumn(textCol("support_level", ""))
	addIndexes(sessions, columnSessionID)

	llm := newEventTable(tableLLMEvents)
	llm.AddColumn(textCol("provider"))
	llm.AddColumn(textCol("model"))
	llm.AddColumn(textCol("purpose"))
	llm.AddColumn(intCol("input_tokens", 0))
	llm.AddColumn(intCol("output_tokens", 0))
	llm.AddColumn(&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0})
	llm.AddColumn(&schema.Column{Name: "success", Type: field.TypeBool})
	llm.AddColumn(textCol("error_message", ""))
	llm.AddColumn(textCol("request_body", ""))
	llm.AddColumn(textCol("response_body", ""))
	addIndexes(llm, "purpose")

	snapshots := schema.NewTable(tableSnapshots)
	snapshots.AddPrimary(&schema.Column{Name: columnID, Type: field.TypeInt, Increment: true})
	snapshots.AddColumn(&schema.Column{Name: columnSequence, Type: field.TypeInt64})
	snapshots.AddColumn(&schema.Column{Name: columnTimestamp, Type: field.TypeTime})
	snapshots.AddColumn(textCol("data"))
	addIndexes(snapshots, columnTimestamp)

	return []*schema.Table{sequence, children, activities, answers, sessions, llm, snapshots}
}

// migrate brings the database up to the described schema and seeds the
// sequence counter. Columns and tables are only ever added.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init migration: %w", err)
	}
	if err := m.Create(ctx, tables()...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := seedSequence(ctx, drv); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}
