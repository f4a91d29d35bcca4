package quota

import (
	"context"
	"sort"
	"sync"
	"time"
)

type counterKey struct {
	actorType ActorType
	actorID   string
	period    Period
	periodKey string
}

type counter struct {
	tokens    int
	images    int
	updatedAt time.Time
}

// implements Store in process memory, for development and tests
type MemoryStore struct {
	mu       sync.RWMutex
	counters map[counterKey]*counter
}

// creates a new in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[counterKey]*counter),
	}
}

func keyFor(actor Actor, period Period, keys PeriodKeys) counterKey {
	return counterKey{
		actorType: actor.Type,
		actorID:   actor.ID,
		period:    period,
		periodKey: keys.For(period),
	}
}

// reads the current bucket counters
func (s *MemoryStore) GetUsage(_ context.Context, actor Actor, keys PeriodKeys) (Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usage Usage

	if c, ok := s.counters[keyFor(actor, PeriodDay, keys)]; ok {
		usage.Daily = c.tokens
	}

	if c, ok := s.counters[keyFor(actor, PeriodMonth, keys)]; ok {
		usage.Monthly = c.tokens
		usage.Images = c.images
	}

	return usage, nil
}

// increments both token buckets under one lock
func (s *MemoryStore) AddTokens(_ context.Context, actor Actor, keys PeriodKeys, tokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	for _, p := range []Period{PeriodDay, PeriodMonth} {
		c := s.upsert(keyFor(actor, p, keys))
		c.tokens += tokens
		c.updatedAt = now
	}

	return nil
}

// increments the month image bucket
func (s *MemoryStore) AddImages(_ context.Context, actor Actor, keys PeriodKeys, images int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.upsert(keyFor(actor, PeriodMonth, keys))
	c.images += images
	c.updatedAt = time.Now()

	return nil
}

// lists the most recent day buckets of an actor, newest first
func (s *MemoryStore) DailyHistory(_ context.Context, actor Actor, limit int) ([]DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]DailyUsage, 0)

	for k, c := range s.counters {
		if k.actorType != actor.Type || k.actorID != actor.ID || k.period != PeriodDay {
			continue
		}

		history = append(history, DailyUsage{
			Date:      k.periodKey,
			Tokens:    c.tokens,
			UpdatedAt: c.updatedAt,
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}

	return history, nil
}

// returns the number of bucket rows held, for tests and diagnostics
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counters)
}

// must be called with mu held
func (s *MemoryStore) upsert(k counterKey) *counter {
	c, ok := s.counters[k]
	if !ok {
		c = &counter{}
		s.counters[k] = c
	}

	return c
}
