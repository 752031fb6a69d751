// Package flowrepo provides flow document storage implementations.
package flowrepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/pkg/validation"
)

// InMemoryRepository stores flow documents in a map. Each save
// replaces the document wholesale, matching the persistence contract.
type InMemoryRepository struct {
	mu    sync.RWMutex
	flows map[string]*flow.Flow
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{flows: make(map[string]*flow.Flow)}
}

// Save validates the flow structurally and replaces any stored copy.
// Validation warnings do not block the save; errors do.
func (r *InMemoryRepository) Save(ctx context.Context, f *flow.Flow) error {
	if f == nil || f.ID == "" {
		return flow.ErrInvalidFlowID
	}
	if res := validation.ValidateFlow(f); !res.Valid() {
		return fmt.Errorf("invalid flow: %v", res.Errors)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[f.ID] = f.Clone()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*flow.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, flow.ErrFlowNotFound
	}
	return f.Clone(), nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*flow.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*flow.Flow, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f.Clone())
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[id]; !ok {
		return flow.ErrFlowNotFound
	}
	delete(r.flows, id)
	return nil
}
