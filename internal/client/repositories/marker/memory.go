package marker

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository used by tests and by callers
// that explicitly opt out of durable session restoration.
type MemoryRepository struct {
	mu  sync.Mutex
	rec *Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Get(ctx context.Context) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec == nil {
		return nil, nil
	}
	cp := *r.rec
	return &cp, nil
}

func (r *MemoryRepository) Save(ctx context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.rec = &cp
	return nil
}

func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec = nil
	return nil
}
