package store

import (
	"context"
	"errors"
	"time"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/assessment"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Child is a person assessments and games are recorded for.
type Child struct {
	ID        string
	Name      string
	BirthYear int
	Notes     string
	CreatedAt time.Time
}

// ChildRepo manages child records.
type ChildRepo interface {
	Create(ctx context.Context, c *Child) error
	Get(ctx context.Context, id string) (*Child, error)
	FindByName(ctx context.Context, name string) (*Child, error)
	List(ctx context.Context) ([]Child, error)
	Delete(ctx context.Context, id string) error
}

// ActivityFilter narrows an activity query.
type ActivityFilter struct {
	ChildID string
	Type    activity.Type
	QueryOpts
}

// ActivityRepo stores finished assessments and games.
// It satisfies activity.Sink.
type ActivityRepo interface {
	Record(ctx context.Context, rec activity.Record) error
	Query(ctx context.Context, f ActivityFilter) ([]activity.Record, error)
}

// SnapshotData captures resumable state at a point in time.
type SnapshotData struct {
	Version int `json:"version"`

	// Assessment is the unfinished questionnaire, nil once submitted or reset.
	Assessment *assessment.SnapshotData `json:"assessment,omitempty"`
}

// Snapshot represents a point-in-time capture of resumable state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// Session lifecycle actions.
const (
	SessionActionStart  = "start"
	SessionActionSubmit = "submit"
	SessionActionReset  = "reset"
)

// AnswerEventData captures one recorded questionnaire answer.
type AnswerEventData struct {
	SessionID   string
	ChildID     string
	QuestionID  string
	Category    string
	Level       string
	OptionIndex int
	Score       int
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionEventData captures an assessment session lifecycle change.
type SessionEventData struct {
	SessionID    string
	ChildID      string
	Action       string
	Answered     int
	TotalScore   int
	SupportLevel string
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by a grouping key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QueryAnswerEvents(ctx context.Context, sessionID string) ([]AnswerEventRecord, error)
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	// GetLLMEvent returns nil, nil when the event does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
