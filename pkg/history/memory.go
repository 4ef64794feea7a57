package history

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps runs in memory. It is used by tests and by one-shot
// CLI invocations that have no database configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = clone(run)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(run), nil
}

func (s *MemoryStore) List(ctx context.Context, query *Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(query)
	slices.SortFunc(matched, func(a, b *Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	offset := 0
	if query != nil {
		offset = query.Offset
	}
	if offset >= len(matched) {
		return []*Run{}, nil
	}
	end := min(offset+query.limit(), len(matched))

	out := make([]*Run, 0, end-offset)
	for _, run := range matched[offset:end] {
		out = append(out, clone(run))
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filter(query))), nil
}

func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) filter(query *Query) []*Run {
	var out []*Run
	for _, run := range s.runs {
		if query.matches(run) {
			out = append(out, run)
		}
	}
	return out
}

func clone(run *Run) *Run {
	c := *run
	if run.Errors != nil {
		c.Errors = make(map[string][]string, len(run.Errors))
		for col, errs := range run.Errors {
			c.Errors[col] = slices.Clone(errs)
		}
	}
	return &c
}
