package health

import (
	"math"
	"sync"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/logger"
)

// Partial carries the fields of one record update. Nil fields are left alone.
type Partial struct {
	Age               *int
	Gender            *domain.Gender
	Height            *float64
	Weight            *float64
	BloodGlucose      *float64
	ClearBloodGlucose bool
	CompletedProfile  *bool
}

// Store owns the live health record of one user. Out-of-bound values are
// dropped silently so slider-style input never produces errors.
type Store struct {
	mu          sync.RWMutex
	record      domain.HealthRecord
	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id int
	fn func(domain.HealthRecord)
}

// NewStore creates a store seeded with initial. Derived fields are recomputed.
func NewStore(initial domain.HealthRecord) *Store {
	s := &Store{record: initial.Clone()}
	s.recomputeBMI()
	return s
}

// Snapshot returns a deep copy of the current record.
func (s *Store) Snapshot() domain.HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// Update applies p and returns the resulting record.
func (s *Store) Update(p Partial) domain.HealthRecord {
	s.mu.Lock()
	changed := s.apply(p)
	snapshot := s.record.Clone()
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
	return snapshot
}

// Complete marks the profile complete once age, gender, height and weight are set.
func (s *Store) Complete() (domain.HealthRecord, error) {
	s.mu.Lock()
	if missing := s.record.MissingFields(); len(missing) > 0 {
		s.mu.Unlock()
		return s.Snapshot(), apperrors.NewProfileIncompleteError(missing)
	}
	changed := !s.record.CompletedProfile
	s.record.CompletedProfile = true
	snapshot := s.record.Clone()
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
	return snapshot, nil
}

// Reset clears the record.
func (s *Store) Reset() {
	s.mu.Lock()
	s.record = domain.HealthRecord{}
	s.mu.Unlock()
	s.notify(domain.HealthRecord{})
}

// Subscribe registers fn for every accepted change. The returned func removes it.
func (s *Store) Subscribe(fn func(domain.HealthRecord)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(r domain.HealthRecord) {
	s.mu.RLock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(r.Clone())
	}
}

// apply must be called with mu held. It reports whether anything changed.
func (s *Store) apply(p Partial) bool {
	before := s.record.Clone()
	bodyChanged := false

	if p.Age != nil {
		if *p.Age > 0 {
			s.record.Age = *p.Age
		} else {
			rejected("age", *p.Age)
		}
	}
	if p.Gender != nil {
		if p.Gender.Valid() {
			s.record.Gender = *p.Gender
		} else {
			rejected("gender", *p.Gender)
		}
	}
	if p.Height != nil {
		if positive(*p.Height) {
			s.record.Height = *p.Height
			bodyChanged = true
		} else {
			rejected("height", *p.Height)
		}
	}
	if p.Weight != nil {
		if positive(*p.Weight) {
			s.record.Weight = *p.Weight
			bodyChanged = true
		} else {
			rejected("weight", *p.Weight)
		}
	}
	switch {
	case p.ClearBloodGlucose:
		s.record.BloodGlucose = nil
	case p.BloodGlucose != nil:
		if g := *p.BloodGlucose; finite(g) && g >= 0 {
			s.record.BloodGlucose = domain.Float(g)
		} else {
			rejected("blood_glucose", g)
		}
	}
	if p.CompletedProfile != nil {
		s.record.CompletedProfile = *p.CompletedProfile
	}

	if bodyChanged {
		s.recomputeBMI()
	}
	return !sameRecord(before, s.record)
}

// recomputeBMI keeps BMI and its category in sync with height and weight.
func (s *Store) recomputeBMI() {
	if s.record.Height > 0 && s.record.Weight > 0 {
		bmi := ComputeBMI(s.record.Height, s.record.Weight)
		s.record.BMI = &bmi
		s.record.BMICategory = Category(bmi)
		return
	}
	s.record.BMI = nil
	s.record.BMICategory = ""
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func rejected(field string, value any) {
	logger.Debug("Health record value rejected", "field", field, "value", value)
}

func sameRecord(a, b domain.HealthRecord) bool {
	return a.Age == b.Age &&
		a.Gender == b.Gender &&
		a.Height == b.Height &&
		a.Weight == b.Weight &&
		sameFloat(a.BMI, b.BMI) &&
		a.BMICategory == b.BMICategory &&
		sameFloat(a.BloodGlucose, b.BloodGlucose) &&
		a.CompletedProfile == b.CompletedProfile
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
