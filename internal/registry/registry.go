// Package registry holds ingested datasets in memory, keyed by file id.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Entry is one registered dataset.
type Entry struct {
	ID        string
	Name      string
	Dataset   *dataset.Dataset
	CreatedAt time.Time
}

// Registry is a bounded in-memory dataset store. When full, the oldest entry
// is evicted to make room. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	order    []string
	capacity int
	now      func() time.Time
}

// New creates a Registry holding at most capacity datasets. A non-positive
// capacity means unbounded.
func New(capacity int) *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Add stores ds under a fresh id. It returns the new entry and the id of the
// evicted entry, if any.
func (r *Registry) Add(name string, ds *dataset.Dataset) (*Entry, string) {
	e := &Entry{ID: uuid.NewString(), Name: name, Dataset: ds, CreatedAt: r.now().UTC()}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := ""
	if r.capacity > 0 && len(r.order) >= r.capacity {
		evicted = r.order[0]
		r.order = r.order[1:]
		delete(r.entries, evicted)
	}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	return e, evicted
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound("File %s not found", id)
	}
	return e, nil
}

// Dataset returns the dataset registered under id.
func (r *Registry) Dataset(id string) (*dataset.Dataset, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return e.Dataset, nil
}

// Delete removes the entry for id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return domain.ErrNotFound("File %s not found", id)
	}
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the entries in insertion order.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
