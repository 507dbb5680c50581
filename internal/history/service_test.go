package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	"github.com/vladimiradmaev/health-helper/internal/storage"
)

func newTestLog(t *testing.T) (*Log, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	l := NewLog(store)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return l, store
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)

	first, err := l.Save(ctx, domain.HealthRecord{Age: 30, BMI: domain.Float(24)}, &domain.Analysis{Score: 80})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)

	second, err := l.Save(ctx, domain.HealthRecord{Age: 30, BMI: domain.Float(25)}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Nil(t, entries[0].Analysis)
	assert.Equal(t, 80, entries[1].Analysis.Score)
}

func TestSavedEntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)

	record := domain.HealthRecord{BMI: domain.Float(22)}
	analysis := &domain.Analysis{Score: 90, Recommendations: []domain.Recommendation{{ID: "a"}}}
	_, err := l.Save(ctx, record, analysis)
	require.NoError(t, err)

	*record.BMI = 40
	analysis.Recommendations[0].ID = "changed"

	entries, err := l.List(ctx)
	require.NoError(t, err)
	*entries[0].HealthData.BMI = 50

	again, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 22.0, *again[0].HealthData.BMI)
	assert.Equal(t, "a", again[0].Analysis.Recommendations[0].ID)
}

func TestStoredAsJSONArray(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLog(t)

	_, err := l.Save(ctx, domain.HealthRecord{Age: 1}, nil)
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"date":"2024-03-01T10:00:00Z"`)
	assert.Contains(t, raw, `"bloodGlucose":null`)
}

func TestLatestAndTrend(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)

	_, ok, err := l.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Save(ctx, domain.HealthRecord{BMI: domain.Float(27)}, &domain.Analysis{Score: 75})
	require.NoError(t, err)
	_, ok, err = l.Trend(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	last, err := l.Save(ctx, domain.HealthRecord{BMI: domain.Float(26)}, &domain.Analysis{Score: 80})
	require.NoError(t, err)

	latest, ok, err := l.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, last.ID, latest.ID)

	trend, ok, err := l.Trend(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, trend.BMIDelta)
	assert.InDelta(t, -1.0, *trend.BMIDelta, 1e-9)
	assert.Equal(t, 5, trend.ScoreDelta)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)

	_, err := l.Save(ctx, domain.HealthRecord{}, nil)
	require.NoError(t, err)
	require.NoError(t, l.Clear(ctx))

	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
