package recommend

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/health"
	"github.com/vladimiradmaev/health-helper/internal/logger"
)

// Fetcher is the AI recommendation client.
type Fetcher interface {
	FetchRecommendations(ctx context.Context, record domain.HealthRecord, apiKey string, model domain.ModelID) ([]domain.Recommendation, error)
}

// Status of the orchestrator state machine.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ErrSuperseded is returned to a caller whose request finished after a newer
// one had been issued. Its result was discarded.
var ErrSuperseded = errors.New("recommendation request superseded")

// Snapshot is the state exposed to the presentation layer.
type Snapshot struct {
	Status   Status
	Seq      uint64
	Analysis *domain.Analysis
	Err      error
	// Notice holds the last entitlement notice raised by a settings change.
	Notice error
}

func (s Snapshot) clone() Snapshot {
	if s.Analysis != nil {
		a := s.Analysis.Clone()
		s.Analysis = &a
	}
	return s
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLoadingDelay smooths the rules path so the loading state is visible.
func WithLoadingDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.loadingDelay = d }
}

// WithClock overrides the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// Orchestrator chooses between the rules and AI paths and owns the
// Idle -> Loading -> Ready|Failed state machine. Every dependency change
// issues a new sequence number; results of older requests are dropped.
type Orchestrator struct {
	store   *health.Store
	fetcher Fetcher

	loadingDelay time.Duration
	now          func() time.Time
	log          *slog.Logger

	mu                sync.Mutex
	seq               uint64
	settings          domain.Settings
	state             Snapshot
	listeners         []func(Snapshot)
	settingsListeners []func(domain.Settings)
	settled           chan struct{}

	changes     chan struct{}
	unsubscribe func()
}

// NewOrchestrator wires an orchestrator to a record store. The initial
// settings are coerced to what the tier allows.
func NewOrchestrator(store *health.Store, fetcher Fetcher, settings domain.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		fetcher:  fetcher,
		now:      time.Now,
		log:      logger.GetLogger(),
		settings: coerce(settings),
		state:    Snapshot{Status: StatusIdle},
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With("component", "orchestrator")
	o.unsubscribe = store.Subscribe(func(domain.HealthRecord) { o.trigger() })
	return o
}

// Close detaches the orchestrator from its record store.
func (o *Orchestrator) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}

// Start issues a Refresh for every dependency change until ctx is done.
// Each refresh runs in its own goroutine so newer requests can supersede
// older ones.
func (o *Orchestrator) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-o.changes:
				go func() {
					if _, err := o.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
						o.log.Debug("Background refresh finished with error", "error", err)
					}
				}()
			}
		}
	}()
}

func (o *Orchestrator) trigger() {
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// State returns the current snapshot.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Settings returns the current, possibly coerced, settings.
func (o *Orchestrator) Settings() domain.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Wait blocks until no request is in flight and returns the settled state.
func (o *Orchestrator) Wait(ctx context.Context) (Snapshot, error) {
	for {
		o.mu.Lock()
		if o.settled == nil {
			s := o.state.clone()
			o.mu.Unlock()
			return s, s.Err
		}
		ch := o.settled
		o.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return o.State(), ctx.Err()
		}
	}
}

// Subscribe registers fn for every state transition.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// SubscribeSettings registers fn for every settings change.
func (o *Orchestrator) SubscribeSettings(fn func(domain.Settings)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settingsListeners = append(o.settingsListeners, fn)
}

// Refresh computes recommendations for the current record and settings.
// AI failures surface as Failed; there is no fallback to the rules path.
func (o *Orchestrator) Refresh(ctx context.Context) (Snapshot, error) {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	settings := o.settings
	if o.settled == nil {
		o.settled = make(chan struct{})
	}
	o.state = Snapshot{Status: StatusLoading, Seq: seq, Analysis: o.state.Analysis, Notice: o.state.Notice}
	loading := o.state.clone()
	listeners := o.listeners
	o.mu.Unlock()
	publish(listeners, loading)

	record := o.store.Snapshot()
	if !record.CompletedProfile {
		err := apperrors.NewProfileIncompleteError(record.MissingFields())
		return o.finish(seq, Snapshot{Status: StatusIdle}, err)
	}

	if !settings.UseAI() {
		if err := o.delay(ctx); err != nil {
			return o.finish(seq, Snapshot{Status: StatusFailed, Err: err}, err)
		}
		analysis := &domain.Analysis{
			Score:           health.ComputeScore(record),
			Recommendations: Generate(record.BMI, record.BloodGlucose),
			Source:          domain.SourceRules,
			GeneratedAt:     o.now(),
		}
		return o.finish(seq, Snapshot{Status: StatusReady, Analysis: analysis}, nil)
	}

	o.log.Info("Requesting AI recommendations", "seq", seq, "model", settings.Model)
	recs, err := o.fetcher.FetchRecommendations(ctx, record, settings.APIKey, settings.Model)
	if err != nil {
		return o.finish(seq, Snapshot{Status: StatusFailed, Err: err}, err)
	}
	analysis := &domain.Analysis{
		Score:           health.ComputeScore(record),
		Recommendations: recs,
		Source:          domain.SourceAI,
		Model:           settings.Model,
		GeneratedAt:     o.now(),
	}
	return o.finish(seq, Snapshot{Status: StatusReady, Analysis: analysis}, nil)
}

func (o *Orchestrator) delay(ctx context.Context) error {
	if o.loadingDelay <= 0 {
		return nil
	}
	t := time.NewTimer(o.loadingDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperrors.NewTimeoutError("recommendation")
		}
		return ctx.Err()
	}
}

// finish applies next only if seq is still the latest request.
func (o *Orchestrator) finish(seq uint64, next Snapshot, err error) (Snapshot, error) {
	o.mu.Lock()
	if seq != o.seq {
		current := o.state.clone()
		o.mu.Unlock()
		o.log.Debug("Discarding superseded result", "seq", seq, "latest", current.Seq)
		return current, ErrSuperseded
	}
	next.Seq = seq
	next.Notice = o.state.Notice
	o.state = next
	close(o.settled)
	o.settled = nil
	out := o.state.clone()
	listeners := o.listeners
	o.mu.Unlock()

	publish(listeners, out)
	if err != nil {
		o.log.Warn("Recommendation request failed", "seq", seq, "error", err)
	}
	return out, err
}

func publish(listeners []func(Snapshot), s Snapshot) {
	for _, fn := range listeners {
		fn(s.clone())
	}
}

// SetTier changes the entitlement tier. A selected model the new tier cannot
// use is downgraded to the best non-premium model; free turns AI off.
func (o *Orchestrator) SetTier(t domain.Tier) error {
	if _, ok := domain.ParseTier(string(t)); !ok {
		return apperrors.NewValidationError("unknown tier: " + string(t))
	}
	return o.updateSettings(func(s *domain.Settings) error {
		s.Tier = t
		*s = coerce(*s)
		return nil
	})
}

// SetAPIKey stores the provider key. Clearing it turns AI off.
func (o *Orchestrator) SetAPIKey(key string) error {
	return o.updateSettings(func(s *domain.Settings) error {
		s.APIKey = strings.TrimSpace(key)
		*s = coerce(*s)
		return nil
	})
}

// SetModel selects a model from the catalog.
func (o *Orchestrator) SetModel(id domain.ModelID) error {
	m, ok := domain.LookupModel(id)
	if !ok {
		return apperrors.NewValidationError("unknown model: " + string(id))
	}
	return o.updateSettings(func(s *domain.Settings) error {
		if !s.Tier.Allows(m) {
			return apperrors.NewEntitlementError(m.Name + " is not available on the " + string(s.Tier) + " plan").
				WithContext("model", string(m.ID))
		}
		s.Model = m.ID
		return nil
	})
}

// SetAIEnabled toggles the AI path. Enabling is checked against tier and
// key before anything is sent; a denial leaves AI off.
func (o *Orchestrator) SetAIEnabled(enabled bool) error {
	return o.updateSettings(func(s *domain.Settings) error {
		if !enabled {
			s.AIEnabled = false
			return nil
		}
		if s.Tier == domain.TierFree || s.Tier == "" {
			s.AIEnabled = false
			return apperrors.NewEntitlementError("AI recommendations require a lite or pro plan")
		}
		if s.APIKey == "" {
			s.AIEnabled = false
			return apperrors.NewEntitlementError("AI recommendations require an API key")
		}
		s.AIEnabled = true
		return nil
	})
}

func (o *Orchestrator) updateSettings(fn func(*domain.Settings) error) error {
	o.mu.Lock()
	before := o.settings
	next := before
	err := fn(&next)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeEntitlement {
		o.state.Notice = err
	} else if err == nil {
		o.state.Notice = nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrEntitlementDenied) {
		o.mu.Unlock()
		return err
	}

	o.settings = next
	changed := next != before
	listeners := o.settingsListeners
	o.mu.Unlock()

	if changed {
		o.log.Info("AI settings changed",
			"tier", next.Tier, "model", next.Model, "ai_enabled", next.AIEnabled, "api_key", next.APIKey)
		for _, l := range listeners {
			l(next)
		}
		o.trigger()
	}
	return err
}

// coerce brings settings in line with the tier's entitlements.
func coerce(s domain.Settings) domain.Settings {
	if _, ok := domain.ParseTier(string(s.Tier)); !ok {
		s.Tier = domain.TierFree
	}
	m, ok := domain.LookupModel(s.Model)
	if !ok {
		m = domain.DefaultModel()
		s.Model = m.ID
	}
	if m.Premium && !s.Tier.Allows(m) {
		best, ok := s.Tier.BestModel()
		if !ok {
			best = domain.DefaultModel()
		}
		s.Model = best.ID
	}
	if !s.AIEntitled() {
		s.AIEnabled = false
	}
	return s
}
