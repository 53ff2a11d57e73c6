package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gymclass/service-booking/internal/domain/gymclass"
	"github.com/gymclass/service-booking/internal/platform/apperr"
)

// ClassRepository is an in-memory class catalogue.
type ClassRepository struct {
	mu      sync.RWMutex
	classes map[uuid.UUID]gymclass.Class
}

// NewClassRepository creates an empty ClassRepository.
func NewClassRepository() *ClassRepository {
	return &ClassRepository{classes: make(map[uuid.UUID]gymclass.Class)}
}

// Put adds or replaces a class.
func (r *ClassRepository) Put(c gymclass.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.ID] = c
}

// Remove drops a class from the catalogue.
func (r *ClassRepository) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, id)
}

// Get resolves a class by ID.
func (r *ClassRepository) Get(ctx context.Context, id uuid.UUID) (*gymclass.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Class", id.String())
	}
	return &c, nil
}
