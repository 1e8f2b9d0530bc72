package rank

import (
	"context"
	"sort"
	"time"

	"rank-api/feature/rank/models"
)

// Repository persists ranks. Every backend honors the same contract:
//   - Get, Rank and Delete treat a soft-deleted rank as models.ErrNotFound.
//   - Create fails with models.ErrAlreadyExists when the id is taken,
//     deleted or not.
//   - Rank is an atomic read-modify-write that only changes Average and Total.
//   - List returns live ranks ordered by CreatedAt, then ID.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Rank, error)
	Create(ctx context.Context, rank *models.Rank) error
	Rank(ctx context.Context, id string, score float64) (*models.Rank, error)
	List(ctx context.Context, projectID string) ([]models.Rank, error)
	Delete(ctx context.Context, id string, at time.Time) error
}

// Backend names accepted by the rank.backend setting.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
	BackendSQL       = "sql"
)

func sortRanks(ranks []models.Rank) {
	sort.Slice(ranks, func(i, j int) bool {
		if !ranks[i].CreatedAt.Equal(ranks[j].CreatedAt) {
			return ranks[i].CreatedAt.Before(ranks[j].CreatedAt)
		}
		return ranks[i].ID < ranks[j].ID
	})
}
