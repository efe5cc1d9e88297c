package contacts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence gateway for contact submissions.
type Repository interface {
	Insert(ctx context.Context, s *Submission) (*Submission, error)
	// List returns every submission, newest first.
	List(ctx context.Context) ([]*Submission, error)
}

// InMemoryRepository keeps submissions in process memory.
type InMemoryRepository struct {
	mu   sync.RWMutex
	subs []*Submission
	now  func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *InMemoryRepository) Insert(ctx context.Context, s *Submission) (*Submission, error) {
	if s == nil {
		return nil, ErrNilSubmission
	}
	stored := s.Clone()
	stored.ID = uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if n := len(r.subs); n > 0 && !now.After(r.subs[n-1].CreatedAt) {
		now = r.subs[n-1].CreatedAt.Add(time.Microsecond)
	}
	stored.CreatedAt = now
	r.subs = append(r.subs, stored)
	return stored.Clone(), nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Submission, error) {
	r.mu.RLock()
	out := make([]*Submission, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
