package applications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence gateway for applications.
type Repository interface {
	// Insert stores a validated application and returns it with the
	// gateway-assigned id and timestamps.
	Insert(ctx context.Context, app *Application) (*Application, error)
	// List returns every application, newest first.
	List(ctx context.Context) ([]*Application, error)
	Get(ctx context.Context, id string) (*Application, error)
	// UpdateStatus moves the row from status from to status to, setting
	// updated_at. When the stored status is no longer from it returns an
	// *InvalidTransitionError carrying the stored status.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Application, error)
}

// InMemoryRepository keeps applications in process memory.
type InMemoryRepository struct {
	mu   sync.RWMutex
	apps map[string]*Application
	now  func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		apps: make(map[string]*Application),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a copy of app.
func (r *InMemoryRepository) Insert(ctx context.Context, app *Application) (*Application, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	stored := app.Clone()
	stored.ID = uuid.New().String()

	r.mu.Lock()
	now := r.now()
	// keep created_at strictly increasing so newest-first order is total
	for _, existing := range r.apps {
		if !now.After(existing.CreatedAt) {
			now = existing.CreatedAt.Add(time.Microsecond)
		}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.apps[stored.ID] = stored
	r.mu.Unlock()

	return stored.Clone(), nil
}

// List returns copies ordered by creation time, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Application, error) {
	r.mu.RLock()
	out := make([]*Application, 0, len(r.apps))
	for _, app := range r.apps {
		out = append(out, app.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get retrieves an application by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	return app.Clone(), nil
}

// UpdateStatus changes the stored status if it still equals from.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	if app.Status != from {
		return nil, &InvalidTransitionError{From: app.Status, To: to}
	}
	app.Status = to
	app.UpdatedAt = r.now()
	return app.Clone(), nil
}
