package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autismart/autismart/internal/activity"
)

func TestChildRepo_CreateGetList(t *testing.T) {
	s := openTestStore(t)
	repo := s.ChildRepo()
	ctx := context.Background()

	sam := &Child{Name: "  Sam ", BirthYear: 2018}
	require.NoError(t, repo.Create(ctx, sam))
	assert.NotEmpty(t, sam.ID)
	assert.Equal(t, "Sam", sam.Name)

	require.NoError(t, repo.Create(ctx, &Child{Name: "Alex"}))

	got, err := repo.Get(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)
	assert.Equal(t, 2018, got.BirthYear)

	byName, err := repo.FindByName(ctx, "Sam")
	require.NoError(t, err)
	assert.Equal(t, sam.ID, byName.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alex", all[0].Name)
	assert.Equal(t, "Sam", all[1].Name)
}

func TestChildRepo_Errors(t *testing.T) {
	s := openTestStore(t)
	repo := s.ChildRepo()
	ctx := context.Background()

	assert.Error(t, repo.Create(ctx, &Child{Name: "   "}))

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)

	require.NoError(t, repo.Create(ctx, &Child{Name: "Sam"}))
	assert.Error(t, repo.Create(ctx, &Child{Name: "Sam"}), "duplicate names are rejected")
}

func TestActivityRepo_RecordAndQuery(t *testing.T) {
	s := openTestStore(t)
	children := s.ChildRepo()
	repo := s.ActivityRepo()
	ctx := context.Background()

	child := &Child{Name: "Sam"}
	require.NoError(t, children.Create(ctx, child))

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Record(ctx, activity.Record{
		ChildID:    child.ID,
		Type:       activity.TypeAssessment,
		Name:       "Autism Screening Assessment",
		Score:      60,
		MaxScore:   150,
		Percentage: 40,
		Duration:   3 * time.Minute,
		Details:    map[string]any{"support_level": "mild"},
		RecordedAt: base,
	}))
	require.NoError(t, repo.Record(ctx, activity.Record{
		ChildID:          child.ID,
		Type:             activity.TypeGame,
		Name:             "Color Match",
		Score:            450,
		MaxScore:         900,
		Percentage:       50,
		CorrectAnswers:   4,
		IncorrectAnswers: 1,
		RecordedAt:       base.Add(time.Minute),
	}))
	require.NoError(t, repo.Record(ctx, activity.Record{
		Type:       activity.TypeGame,
		Name:       "Memory Match",
		Score:      100,
		MaxScore:   200,
		Percentage: 50,
	}))

	all, err := repo.Query(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Memory Match", all[0].Name, "newest first")
	assert.Empty(t, all[0].ChildID)

	mine, err := repo.Query(ctx, ActivityFilter{ChildID: child.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	games, err := repo.Query(ctx, ActivityFilter{ChildID: child.ID, Type: activity.TypeGame})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 4, games[0].CorrectAnswers)
	assert.Equal(t, 1, games[0].IncorrectAnswers)
	assert.Nil(t, games[0].Details)

	assessments, err := repo.Query(ctx, ActivityFilter{Type: activity.TypeAssessment})
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.Equal(t, 3*time.Minute, assessments[0].Duration)
	assert.Equal(t, "mild", assessments[0].Details["support_level"])
	assert.True(t, assessments[0].RecordedAt.Equal(base))

	limited, err := repo.Query(ctx, ActivityFilter{QueryOpts: QueryOpts{Limit: 1}})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestActivityRepo_DeleteChildCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	child := &Child{Name: "Sam"}
	require.NoError(t, s.ChildRepo().Create(ctx, child))
	require.NoError(t, s.ActivityRepo().Record(ctx, activity.Record{
		ChildID: child.ID, Type: activity.TypeGame, Name: "Emotion Recognition",
	}))

	require.NoError(t, s.ChildRepo().Delete(ctx, child.ID))
	assert.Equal(t, 0, countRows(t, s, tableActivities))
}

func TestActivityRepo_DeleteChildCascadesOnAnyConnection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	child := &Child{Name: "Robin"}
	require.NoError(t, s.ChildRepo().Create(ctx, child))
	require.NoError(t, s.ActivityRepo().Record(ctx, activity.Record{
		ChildID: child.ID, Type: activity.TypeGame, Name: "Color Match",
	}))

	// Holding the first connection forces the pool to open a second one.
	held, err := s.DB().Conn(ctx)
	require.NoError(t, err)
	defer held.Close()
	other, err := s.DB().Conn(ctx)
	require.NoError(t, err)
	defer other.Close()

	for _, c := range []*sql.Conn{held, other} {
		var fk int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
	}

	_, err = other.ExecContext(ctx, "DELETE FROM children WHERE id = ?", child.ID)
	require.NoError(t, err)
	var n int
	require.NoError(t, other.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestActivityRepo_UnknownChildRejected(t *testing.T) {
	s := openTestStore(t)
	err := s.ActivityRepo().Record(context.Background(), activity.Record{
		ChildID: "nobody", Type: activity.TypeGame, Name: "Color Match",
	})
	assert.Error(t, err)
}

func TestEventRepo_AnswerAndSessionEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "sess-1", Action: SessionActionStart,
	}))
	for i, opt := range []int{0, 2, 1} {
		require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{
			SessionID:   "sess-1",
			QuestionID:  "easy-01",
			Category:    "eye-contact",
			Level:       "easy",
			OptionIndex: opt,
			Score:       i,
		}))
	}
	require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{
		SessionID: "sess-2", QuestionID: "easy-02", Category: "communication", Level: "easy",
	}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "sess-1", Action: SessionActionSubmit, Answered: 15, TotalScore: 20, SupportLevel: "mild",
	}))

	answers, err := repo.QueryAnswerEvents(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, []int{0, 2, 1}, []int{answers[0].OptionIndex, answers[1].OptionIndex, answers[2].OptionIndex})
	assert.Less(t, answers[0].Sequence, answers[2].Sequence)

	sessions, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, SessionActionSubmit, sessions[0].Action)
	assert.Equal(t, "mild", sessions[0].SupportLevel)

	// The start event took sequence 1, so everything after it remains.
	after, err := repo.QuerySessionEvents(ctx, QueryOpts{After: 1})
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestEventRepo_LLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "m-a", Purpose: "insight", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: `{"a":1}`},
		{Provider: "anthropic", Model: "m-a", Purpose: "insight", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "m-b", Purpose: "activity-plan", InputTokens: 10, LatencyMs: 10, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "openai", all[0].Provider)
	assert.False(t, all[0].Success)

	last := all[len(all)-1]
	got, err := repo.GetLLMEvent(ctx, last.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"a":1}`, got.RequestBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "activity-plan", byPurpose[0].Key)
	assert.Equal(t, "insight", byPurpose[1].Key)
	assert.Equal(t, 2, byPurpose[1].Calls)
	assert.Equal(t, 400, byPurpose[1].InputTokens)
	assert.Equal(t, 200, byPurpose[1].OutputTokens)
	assert.Equal(t, int64(300), byPurpose[1].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "m-b", byModel[1].Key)
}
