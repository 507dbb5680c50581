package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	"github.com/vladimiradmaev/health-helper/internal/storage"
)

// Key is the storage key of the serialized history array.
const Key = "health-history"

// Log is the append-only history of saved health snapshots. Entries are
// stored oldest-first and never modified after Save.
type Log struct {
	store storage.Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewLog(store storage.Store) *Log {
	return &Log{store: store, now: time.Now}
}

// Trend compares the two newest entries.
type Trend struct {
	BMIDelta   *float64
	ScoreDelta int
	Since      time.Time
}

// Save appends a snapshot of record and analysis. Both are deep-copied.
func (l *Log) Save(ctx context.Context, record domain.HealthRecord, analysis *domain.Analysis) (domain.HistoryEntry, error) {
	entry := domain.HistoryEntry{
		ID:         uuid.New().String(),
		Date:       l.now().UTC(),
		HealthData: record.Clone(),
	}
	if analysis != nil {
		a := analysis.Clone()
		entry.Analysis = &a
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	entries = append(entries, entry)
	if err := storage.SetJSON(ctx, l.store, Key, entries); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to save history: %w", err)
	}
	return entry.Clone(), nil
}

// List returns copies of all entries, newest first.
func (l *Log) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	l.mu.Lock()
	entries, err := l.load(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.Clone()
	}
	return out, nil
}

// Latest returns the newest entry; ok is false when the log is empty.
func (l *Log) Latest(ctx context.Context) (domain.HistoryEntry, bool, error) {
	entries, err := l.List(ctx)
	if err != nil || len(entries) == 0 {
		return domain.HistoryEntry{}, false, err
	}
	return entries[0], true, nil
}

// Trend reports the change between the two newest entries; ok is false
// with fewer than two entries.
func (l *Log) Trend(ctx context.Context) (Trend, bool, error) {
	entries, err := l.List(ctx)
	if err != nil || len(entries) < 2 {
		return Trend{}, false, err
	}
	latest, prev := entries[0], entries[1]

	t := Trend{Since: prev.Date}
	if latest.HealthData.BMI != nil && prev.HealthData.BMI != nil {
		d := *latest.HealthData.BMI - *prev.HealthData.BMI
		t.BMIDelta = &d
	}
	if latest.Analysis != nil && prev.Analysis != nil {
		t.ScoreDelta = latest.Analysis.Score - prev.Analysis.Score
	}
	return t, true, nil
}

// Clear removes every entry.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Remove(ctx, Key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (l *Log) load(ctx context.Context) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if _, err := storage.GetJSON(ctx, l.store, Key, &entries); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}
