package recommend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
)

func TestParseNoJSON(t *testing.T) {
	_, err := Parse("no json here")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParseFailed))
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse(`Sure! [{"title": "x",}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParseFailed))
}

func TestParseAppliesDefaults(t *testing.T) {
	recs, err := Parse(`[{"title":"x"}]`)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, domain.Recommendation{
		ID:          "rec-0",
		Title:       "x",
		Description: DefaultDescription,
		Type:        domain.TypeLifestyle,
		Priority:    domain.PriorityMedium,
		Icon:        domain.DefaultIcon,
	}, recs[0])
}

func TestParseNormalizesFields(t *testing.T) {
	raw := `[{"id":"a","title":"  Walk  ","description":"Daily","type":"EXERCISE","priority":" High ","icon":"footprints"},
	{"type":"sport","priority":"urgent"}]`

	recs, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "Walk", recs[0].Title)
	assert.Equal(t, domain.TypeExercise, recs[0].Type)
	assert.Equal(t, domain.PriorityHigh, recs[0].Priority)
	assert.Equal(t, "footprints", recs[0].Icon)

	assert.Equal(t, "rec-1", recs[1].ID)
	assert.Equal(t, DefaultTitle, recs[1].Title)
	assert.Equal(t, domain.TypeLifestyle, recs[1].Type)
	assert.Equal(t, domain.PriorityMedium, recs[1].Priority)
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ids  []string
	}{
		{
			name: "code fence",
			raw:  "Here you go:\n```json\n[{\"id\":\"r1\",\"title\":\"t\"}]\n```\nStay healthy!",
			ids:  []string{"r1"},
		},
		{
			name: "wrapper object",
			raw:  `{"recommendations":[{"id":"a"},{"id":"b"}]}`,
			ids:  []string{"a", "b"},
		},
		{
			name: "single object",
			raw:  `Result: {"id":"only","title":"One"}`,
			ids:  []string{"only"},
		},
		{
			name: "brackets inside strings",
			raw:  `[{"id":"x","title":"Use [brackets] and {braces}"}]`,
			ids:  []string{"x"},
		},
		{
			name: "numeric ids",
			raw:  `[{"id":1},{"id":2.5}]`,
			ids:  []string{"1", "2.5"},
		},
		{
			name: "duplicate ids",
			raw:  `[{"id":"d"},{"id":"d"},{"id":"d"}]`,
			ids:  []string{"d", "d-2", "d-3"},
		},
		{
			name: "non-object elements skipped",
			raw:  `[1, "text", {"id":"ok"}]`,
			ids:  []string{"ok"},
		},
		{
			name: "invalid candidate then valid",
			raw:  `Note [see below] then [{"id":"later"}]`,
			ids:  []string{"later"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse(tt.raw)
			require.NoError(t, err)

			ids := make([]string, 0, len(recs))
			for _, r := range recs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestParseEmptyArray(t *testing.T) {
	recs, err := Parse("[]")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseKeepsUnknownIcon(t *testing.T) {
	recs, err := Parse(`[{"id":"a","icon":"unicorn"}]`)
	require.NoError(t, err)
	assert.Equal(t, "unicorn", recs[0].Icon)
	assert.Equal(t, domain.DefaultIcon, domain.IconOrDefault(recs[0].Icon))
}

func TestParseDefaultsMistypedFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, r domain.Recommendation)
	}{
		{"numeric priority", `[{"title":"x","priority":1}]`, func(t *testing.T, r domain.Recommendation) {
			assert.Equal(t, "x", r.Title)
			assert.Equal(t, domain.PriorityMedium, r.Priority)
		}},
		{"array type", `[{"title":"y","type":["diet"]}]`, func(t *testing.T, r domain.Recommendation) {
			assert.Equal(t, "y", r.Title)
			assert.Equal(t, domain.TypeLifestyle, r.Type)
		}},
		{"numeric description", `[{"title":"z","description":42}]`, func(t *testing.T, r domain.Recommendation) {
			assert.Equal(t, DefaultDescription, r.Description)
		}},
		{"object title and bool icon", `{"title":{"text":"w"},"icon":true}`, func(t *testing.T, r domain.Recommendation) {
			assert.Equal(t, DefaultTitle, r.Title)
			assert.Equal(t, domain.DefaultIcon, r.Icon)
		}},
		{"null fields", `[{"id":null,"title":null,"priority":null}]`, func(t *testing.T, r domain.Recommendation) {
			assert.Equal(t, "rec-0", r.ID)
			assert.Equal(t, DefaultTitle, r.Title)
			assert.Equal(t, domain.PriorityMedium, r.Priority)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			tt.check(t, recs[0])
		})
	}
}

func TestParseKeepsAllMistypedObjects(t *testing.T) {
	recs, err := Parse(`[{"title":"x","priority":1},{"title":"y","type":["diet"]},{"title":"z","description":42},7,null]`)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{recs[0].Title, recs[1].Title, recs[2].Title})
}

func TestParseSuffixedIDsStayUnique(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"suffix collides with later id", `[{"id":"a"},{"id":"a"},{"id":"a-2"}]`, []string{"a", "a-2", "a-2-2"}},
		{"suffix collides with earlier id", `[{"id":"a-2"},{"id":"a"},{"id":"a"}]`, []string{"a-2", "a", "a-3"}},
		{"default id collides", `[{"id":"rec-1"},{}]`, []string{"rec-1", "rec-1-2"}},
		{"triple", `[{"id":"b"},{"id":"b"},{"id":"b"}]`, []string{"b", "b-2", "b-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse(tt.raw)
			require.NoError(t, err)
			ids := make([]string, 0, len(recs))
			for _, r := range recs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestParseJSONWithoutObjects(t *testing.T) {
	for _, raw := range []string{`[1]`, `["a", 2, null]`, `{"recommendations":[]}`, `Scores: [1, 2] and nothing else`} {
		recs, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.NotNil(t, recs, raw)
		assert.Empty(t, recs, raw)
	}
}
