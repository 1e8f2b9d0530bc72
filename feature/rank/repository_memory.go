package rank

import (
	"context"
	"sync"
	"time"

	"rank-api/feature/rank/models"
)

// MemoryRepository keeps ranks in process memory. It is meant for tests and
// for running the API without Firestore.
type MemoryRepository struct {
	mu    sync.Mutex
	ranks map[string]models.Rank
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ranks: make(map[string]models.Rank)}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Rank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rank, ok := r.ranks[id]
	if !ok || rank.IsDeleted() {
		return nil, models.ErrNotFound
	}
	return &rank, nil
}

func (r *MemoryRepository) Create(_ context.Context, rank *models.Rank) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ranks[rank.ID]; ok {
		return models.ErrAlreadyExists
	}
	r.ranks[rank.ID] = *rank
	return nil
}

func (r *MemoryRepository) Rank(_ context.Context, id string, score float64) (*models.Rank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rank, ok := r.ranks[id]
	if !ok || rank.IsDeleted() {
		return nil, models.ErrNotFound
	}
	if err := rank.UpdateScore(score); err != nil {
		return nil, err
	}
	r.ranks[id] = rank
	return &rank, nil
}

func (r *MemoryRepository) List(_ context.Context, projectID string) ([]models.Rank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ranks := []models.Rank{}
	for _, rank := range r.ranks {
		if rank.ProjectID == projectID && !rank.IsDeleted() {
			ranks = append(ranks, rank)
		}
	}
	sortRanks(ranks)
	return ranks, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rank, ok := r.ranks[id]
	if !ok || rank.IsDeleted() {
		return models.ErrNotFound
	}
	rank.DeletedAt = &at
	r.ranks[id] = rank
	return nil
}
