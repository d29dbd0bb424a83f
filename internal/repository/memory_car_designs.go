package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"demohub/internal/car"

	"github.com/google/uuid"
)

// MemoryCarDesignsRepo 在 DB 未启用时使用的内存实现（进程重启即丢失）
type MemoryCarDesignsRepo struct {
	mu      sync.RWMutex
	designs map[string]car.SavedDesign // design_id -> design
}

func NewMemoryCarDesignsRepo() *MemoryCarDesignsRepo {
	return &MemoryCarDesignsRepo{
		designs: map[string]car.SavedDesign{},
	}
}

var _ CarDesignsRepository = (*MemoryCarDesignsRepo)(nil)

func (r *MemoryCarDesignsRepo) Create(_ context.Context, d *car.SavedDesign) (string, error) {
	if d == nil {
		return "", fmt.Errorf("design is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *d
	stored.ID = id
	r.designs[id] = stored
	return id, nil
}

func (r *MemoryCarDesignsRepo) List(_ context.Context, owner string) ([]car.SavedDesign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]car.SavedDesign, 0)
	for _, d := range r.designs {
		if d.Owner == owner {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SavedAt.Before(out[j].SavedAt)
	})
	return out, nil
}

func (r *MemoryCarDesignsRepo) Get(_ context.Context, owner, id string) (*car.SavedDesign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.designs[id]
	if !ok || d.Owner != owner {
		return nil, fmt.Errorf("design %s: %w", id, car.ErrDesignNotFound)
	}
	return &d, nil
}

func (r *MemoryCarDesignsRepo) Delete(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.designs[id]
	if !ok || d.Owner != owner {
		return fmt.Errorf("design %s: %w", id, car.ErrDesignNotFound)
	}
	delete(r.designs, id)
	return nil
}
