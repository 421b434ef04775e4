// Package repository provides the saved-strategy store the application layer
// injects into its handlers. The simulation core never touches it; it exists
// at the boundary with explicit operations and no hidden process-wide state.
package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// SavedStrategy is a stored strategy definition with identity and timestamps.
type SavedStrategy struct {
	ID         string                   `yaml:"id" json:"id"`
	Definition types.StrategyDefinition `yaml:"definition" json:"definition"`
	CreatedAt  time.Time                `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time                `yaml:"updated_at" json:"updated_at"`
}

// StrategyRepository stores strategy definitions for reuse across backtests.
type StrategyRepository interface {
	Create(definition types.StrategyDefinition) (SavedStrategy, error)
	Get(id string) (SavedStrategy, error)
	List() []SavedStrategy
	Update(id string, definition types.StrategyDefinition) (SavedStrategy, error)
	Delete(id string) error
	Clear()
}

// InMemoryStrategyRepository is a thread-safe in-memory implementation.
type InMemoryStrategyRepository struct {
	mu         sync.RWMutex
	strategies map[string]SavedStrategy
}

// NewInMemoryStrategyRepository creates an empty repository.
func NewInMemoryStrategyRepository() *InMemoryStrategyRepository {
	return &InMemoryStrategyRepository{
		strategies: make(map[string]SavedStrategy),
	}
}

// Create validates and stores a new strategy, assigning it an ID.
func (r *InMemoryStrategyRepository) Create(definition types.StrategyDefinition) (SavedStrategy, error) {
	if err := definition.Validate(); err != nil {
		return SavedStrategy{}, err
	}

	now := time.Now().UTC()
	saved := SavedStrategy{
		ID:         uuid.NewString(),
		Definition: definition,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[saved.ID] = saved

	return saved, nil
}

// Get retrieves a strategy by ID.
func (r *InMemoryStrategyRepository) Get(id string) (SavedStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	saved, ok := r.strategies[id]
	if !ok {
		return SavedStrategy{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
	}

	return saved, nil
}

// List returns all stored strategies.
func (r *InMemoryStrategyRepository) List() []SavedStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]SavedStrategy, 0, len(r.strategies))
	for _, saved := range r.strategies {
		list = append(list, saved)
	}

	return list
}

// Update validates and replaces the definition of an existing strategy.
func (r *InMemoryStrategyRepository) Update(id string, definition types.StrategyDefinition) (SavedStrategy, error) {
	if err := definition.Validate(); err != nil {
		return SavedStrategy{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved, ok := r.strategies[id]
	if !ok {
		return SavedStrategy{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
	}

	saved.Definition = definition
	saved.UpdatedAt = time.Now().UTC()
	r.strategies[id] = saved

	return saved, nil
}

// Delete removes a strategy by ID.
func (r *InMemoryStrategyRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.strategies[id]; !ok {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
	}

	delete(r.strategies, id)

	return nil
}

// Clear removes all stored strategies.
func (r *InMemoryStrategyRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = make(map[string]SavedStrategy)
}
