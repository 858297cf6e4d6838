package catalog

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Shape(t *testing.T) {
	c := Default()

	if got := c.Total(); got != 50 {
		t.Fatalf("Total() = %d, want 50", got)
	}

	want := map[LevelKey]int{
		LevelEasy:         15,
		LevelIntermediate: 15,
		LevelAdvanced:     15,
		LevelSensory:      5,
	}
	for key, n := range want {
		l, err := c.Level(key)
		if err != nil {
			t.Fatalf("Level(%q): %v", key, err)
		}
		if len(l.Questions) != n {
			t.Errorf("level %q has %d questions, want %d", key, len(l.Questions), n)
		}
	}
}

func TestDefault_CategoryCounts(t *testing.T) {
	counts := Default().CountByCategory()

	if len(counts) != len(AllCategories()) {
		t.Fatalf("CountByCategory has %d entries, want %d", len(counts), len(AllCategories()))
	}
	if counts[CategoryCommunication] != 10 {
		t.Errorf("communication count = %d, want 10", counts[CategoryCommunication])
	}

	sum := 0
	for _, n := range counts {
		sum += n
	}
	if sum != 50 {
		t.Errorf("category counts sum to %d, want 50", sum)
	}
}

func TestDefault_InvertedItemsHaveReversedScores(t *testing.T) {
	var inverted int
	for _, q := range Default().Questions() {
		if !q.Inverted {
			continue
		}
		inverted++
		if q.Scores[0] != 3 || q.Scores[2] != 1 {
			t.Errorf("inverted question %q has scores %v, want descending", q.ID, q.Scores)
		}
	}
	if inverted == 0 {
		t.Error("expected at least one inverted question")
	}
}

func TestDefault_QuestionLookup(t *testing.T) {
	c := Default()

	q, ok := c.Question("sens-01")
	require.True(t, ok)
	assert.Equal(t, CategorySensorySensitivity, q.Category)
	assert.Equal(t, 3, q.MaxScore())

	key, ok := c.LevelOf("adv-07")
	require.True(t, ok)
	assert.Equal(t, LevelAdvanced, key)

	_, ok = c.Question("nope")
	assert.False(t, ok)

	_, err := c.Level("expert")
	assert.Error(t, err)
}

func TestDefault_QuestionsInDeclarationOrder(t *testing.T) {
	qs := Default().Questions()
	if qs[0].ID != "easy-01" {
		t.Errorf("first question = %q, want easy-01", qs[0].ID)
	}
	if qs[len(qs)-1].ID != "sens-05" {
		t.Errorf("last question = %q, want sens-05", qs[len(qs)-1].ID)
	}
}

const smallCatalog = `
version: 1
levels:
  - key: custom
    title: Custom
    questions:
      - id: c-1
        category: communication
        text: Does your child ask for help?
        options: [Usually, Sometimes, Rarely]
        scores: [1, 2, 3]
`

func TestParse_CustomLevel(t *testing.T) {
	c, err := Parse([]byte(smallCatalog))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Total())
}

func TestParse_SchemaRejectsUnknownField(t *testing.T) {
	doc := strings.Replace(smallCatalog, "scores: [1, 2, 3]", "scores: [1, 2, 3]\n        weight: 2", 1)
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestParse_SchemaRejectsStringScore(t *testing.T) {
	doc := strings.Replace(smallCatalog, "scores: [1, 2, 3]", `scores: [1, "two", 3]`, 1)
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("levels: [unclosed"))
	require.Error(t, err)
}

func TestValidate_DetectsProblems(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want string
	}{
		{
			name: "score out of range",
			q:    Question{ID: "a", Category: CategoryCommunication, Text: "x", Options: []string{"a", "b", "c"}, Scores: []int{1, 2, 4}},
			want: "out of range",
		},
		{
			name: "length mismatch",
			q:    Question{ID: "a", Category: CategoryCommunication, Text: "x", Options: []string{"a", "b", "c"}, Scores: []int{1, 2}},
			want: "2 scores",
		},
		{
			name: "unknown category",
			q:    Question{ID: "a", Category: "mood", Text: "x", Options: []string{"a", "b", "c"}, Scores: []int{1, 2, 3}},
			want: "unknown category",
		},
		{
			name: "empty text",
			q:    Question{ID: "a", Category: CategoryCommunication, Text: " ", Options: []string{"a", "b", "c"}, Scores: []int{1, 2, 3}},
			want: "empty text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Catalog{Version: 1, Levels: []Level{{Key: "custom", Questions: []Question{tt.q}}}}
			err := Validate(c)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_DetectsDuplicateID(t *testing.T) {
	q := Question{ID: "dup", Category: CategoryEyeContact, Text: "x", Options: []string{"a", "b", "c"}, Scores: []int{1, 2, 3}}
	c := &Catalog{Version: 1, Levels: []Level{{Key: "custom", Questions: []Question{q, q}}}}
	err := Validate(c)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got: %v", err)
	}
}

func TestValidate_StandardLevelCount(t *testing.T) {
	q := Question{ID: "s", Category: CategorySensorySensitivity, Text: "x", Options: []string{"a", "b", "c"}, Scores: []int{1, 2, 3}}
	c := &Catalog{Version: 1, Levels: []Level{{Key: LevelSensory, Questions: []Question{q}}}}
	err := Validate(c)
	if err == nil || !strings.Contains(err.Error(), "expected 5") {
		t.Errorf("expected level count error, got: %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"packs/b/second.yaml": {Data: []byte(smallCatalog)},
		"packs/a/first.yaml":  {Data: []byte(smallCatalog)},
		"packs/readme.md":     {Data: []byte("# not a catalog")},
	}

	packs, err := LoadFS(fsys, "")
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "packs/a/first.yaml", packs[0].Path)
	assert.Equal(t, "packs/b/second.yaml", packs[1].Path)
}

func TestLoadFS_InvalidPackFails(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": {Data: []byte("version: 1\nlevels: []\n")},
	}
	_, err := LoadFS(fsys, "*.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadFS_InvalidPattern(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{}, "[")
	require.Error(t, err)
}

func TestResolve_EmptyDirUsesDefault(t *testing.T) {
	c, err := Resolve("", "")
	require.NoError(t, err)
	assert.Same(t, Default(), c)
}

func TestResolve_NoPacks(t *testing.T) {
	_, err := Resolve(t.TempDir(), "")
	require.Error(t, err)
}
