package rank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-api/feature/rank/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection holding ranks.
const DefaultCollection = "ranks"

// FirestoreRepository stores one document per rank, keyed by the rank id.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRepository creates a repository on collection.
func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreRepository{client: client, collection: collection}
}

func (r *FirestoreRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*models.Rank, error) {
	if id == "" {
		return nil, models.ErrNotFound
	}
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rank %s: %w", id, err)
	}
	var rank models.Rank
	if err := snap.DataTo(&rank); err != nil {
		return nil, fmt.Errorf("failed to decode rank %s: %w", id, err)
	}
	if rank.IsDeleted() {
		return nil, models.ErrNotFound
	}
	return &rank, nil
}

func (r *FirestoreRepository) Create(ctx context.Context, rank *models.Rank) error {
	if rank.ID == "" {
		return fmt.Errorf("%w: empty rank id", models.ErrInvalidRequest)
	}
	if _, err := r.doc(rank.ID).Create(ctx, rank); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create rank %s: %w", rank.ID, err)
	}
	return nil
}

// Rank runs the read-modify-write in a transaction; Firestore retries it on
// contention.
func (r *FirestoreRepository) Rank(ctx context.Context, id string, score float64) (*models.Rank, error) {
	if id == "" {
		return nil, models.ErrNotFound
	}
	ref := r.doc(id)

	var updated models.Rank
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rank, err := r.getInTx(tx, ref)
		if err != nil {
			return err
		}
		if err := rank.UpdateScore(score); err != nil {
			return err
		}
		updated = *rank
		return tx.Update(ref, []firestore.Update{
			{Path: "average", Value: rank.Average},
			{Path: "total", Value: rank.Total},
		})
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to rank %s: %w", id, err)
	}
	return &updated, nil
}

func (r *FirestoreRepository) List(ctx context.Context, projectID string) ([]models.Rank, error) {
	iter := r.client.Collection(r.collection).Where("projectId", "==", projectID).Documents(ctx)
	defer iter.Stop()

	ranks := []models.Rank{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list ranks of %s: %w", projectID, err)
		}
		var rank models.Rank
		if err := snap.DataTo(&rank); err != nil {
			return nil, fmt.Errorf("failed to decode rank %s: %w", snap.Ref.ID, err)
		}
		if !rank.IsDeleted() {
			ranks = append(ranks, rank)
		}
	}
	// Sorting in memory avoids a composite index on (projectId, createdAt).
	sortRanks(ranks)
	return ranks, nil
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return models.ErrNotFound
	}
	ref := r.doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := r.getInTx(tx, ref); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{{Path: "deletedAt", Value: at}})
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete rank %s: %w", id, err)
	}
	return nil
}

func (r *FirestoreRepository) getInTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.Rank, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	var rank models.Rank
	if err := snap.DataTo(&rank); err != nil {
		return nil, err
	}
	if rank.IsDeleted() {
		return nil, models.ErrNotFound
	}
	return &rank, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrScoreOutOfRange) ||
		errors.Is(err, models.ErrAlreadyExists)
}
