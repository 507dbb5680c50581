package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	"github.com/vladimiradmaev/health-helper/internal/health"
	"github.com/vladimiradmaev/health-helper/internal/history"
	"github.com/vladimiradmaev/health-helper/internal/logger"
	"github.com/vladimiradmaev/health-helper/internal/recommend"
	"github.com/vladimiradmaev/health-helper/internal/storage"
)

const (
	recordKey   = "health-record"
	settingsKey = "ai-settings"
)

// Session is the live state of one Telegram user.
type Session struct {
	TelegramID  int64
	Record      *health.Store
	Recommender *recommend.Orchestrator
	History     *history.Log

	cancel context.CancelFunc
}

func (s *Session) close() {
	s.cancel()
	s.Recommender.Close()
}

// SessionService loads sessions from storage and writes changes back.
type SessionService struct {
	stores   storage.Stores
	fetcher  recommend.Fetcher
	defaults domain.Settings
	opts     []recommend.Option

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionService(stores storage.Stores, fetcher recommend.Fetcher, defaults domain.Settings, opts ...recommend.Option) *SessionService {
	return &SessionService{
		stores:   stores,
		fetcher:  fetcher,
		defaults: defaults,
		opts:     opts,
		sessions: make(map[int64]*Session),
	}
}

// Get returns the session of telegramID, loading it on first use.
func (s *SessionService) Get(ctx context.Context, telegramID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[telegramID]; ok {
		return sess, nil
	}

	prefix := storage.UserPrefix(telegramID)
	sessionStore := storage.Prefixed(s.stores.Session, prefix)
	durableStore := storage.Prefixed(s.stores.Durable, prefix)

	var record domain.HealthRecord
	if _, err := storage.GetJSON(ctx, sessionStore, recordKey, &record); err != nil {
		return nil, fmt.Errorf("failed to load health record: %w", err)
	}
	settings := s.defaults
	if _, err := storage.GetJSON(ctx, durableStore, settingsKey, &settings); err != nil {
		return nil, fmt.Errorf("failed to load AI settings: %w", err)
	}

	log := logger.WithUser(telegramID)
	store := health.NewStore(record)
	opts := append([]recommend.Option{recommend.WithLogger(log)}, s.opts...)
	orch := recommend.NewOrchestrator(store, s.fetcher, settings, opts...)

	store.Subscribe(func(r domain.HealthRecord) {
		if err := storage.SetJSON(context.Background(), sessionStore, recordKey, r); err != nil {
			log.Error("Failed to persist health record", "error", err)
		}
	})
	orch.SubscribeSettings(func(st domain.Settings) {
		if err := storage.SetJSON(context.Background(), durableStore, settingsKey, st); err != nil {
			log.Error("Failed to persist AI settings", "error", err)
		}
	})

	runCtx, cancel := context.WithCancel(context.Background())
	orch.Start(runCtx)

	sess := &Session{
		TelegramID:  telegramID,
		Record:      store,
		Recommender: orch,
		History:     history.NewLog(durableStore),
		cancel:      cancel,
	}
	s.sessions[telegramID] = sess
	log.Debug("Session loaded", "tier", orch.Settings().Tier, "completed", record.CompletedProfile)
	return sess, nil
}

// Close stops every session's change feed.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.close()
		delete(s.sessions, id)
	}
}
