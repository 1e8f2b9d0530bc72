package rank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-api/feature/rank/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rankRecord is the SQL row of a rank.
type rankRecord struct {
	ID        string     `gorm:"primaryKey;size:512"`
	ProjectID string     `gorm:"size:256;not null;index"`
	ItemID    string     `gorm:"size:256;not null"`
	Total     int64      `gorm:"not null;default:0"`
	Average   float64    `gorm:"not null;default:0"`
	Min       float64    `gorm:"column:min_score;not null"`
	Max       float64    `gorm:"column:max_score;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	DeletedAt *time.Time `gorm:"index"`
}

func (rankRecord) TableName() string { return "ranks" }

func newRankRecord(r *models.Rank) rankRecord {
	return rankRecord{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		ItemID:    r.ItemID,
		Total:     r.Total,
		Average:   r.Average,
		Min:       r.Min,
		Max:       r.Max,
		CreatedAt: r.CreatedAt.UTC(),
		DeletedAt: r.DeletedAt,
	}
}

func (rec rankRecord) toModel() models.Rank {
	rank := models.Rank{
		ID:        rec.ID,
		ProjectID: rec.ProjectID,
		ItemID:    rec.ItemID,
		Total:     rec.Total,
		Average:   rec.Average,
		Min:       rec.Min,
		Max:       rec.Max,
		CreatedAt: rec.CreatedAt.UTC(),
	}
	if rec.DeletedAt != nil {
		at := rec.DeletedAt.UTC()
		rank.DeletedAt = &at
	}
	return rank
}

// SQLRepository stores ranks in a relational table through GORM.
type SQLRepository struct {
	db *gorm.DB
}

// NewSQLRepository migrates the ranks table and returns the repository.
func NewSQLRepository(db *gorm.DB) (*SQLRepository, error) {
	if err := db.AutoMigrate(&rankRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ranks table: %w", err)
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Rank, error) {
	var rec rankRecord
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rank %s: %w", id, err)
	}
	rank := rec.toModel()
	return &rank, nil
}

func (r *SQLRepository) Create(ctx context.Context, rank *models.Rank) error {
	rec := newRankRecord(rank)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rankRecord{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.ErrAlreadyExists
		}
		return tx.Create(&rec).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrAlreadyExists
	default:
		return fmt.Errorf("failed to create rank %s: %w", rank.ID, err)
	}
}

func (r *SQLRepository) Rank(ctx context.Context, id string, score float64) (*models.Rank, error) {
	var updated models.Rank
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rank, err := r.lockLive(tx, id)
		if err != nil {
			return err
		}
		if err := rank.UpdateScore(score); err != nil {
			return err
		}
		updated = *rank
		return tx.Model(&rankRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
			"average": rank.Average,
			"total":   rank.Total,
		}).Error
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to rank %s: %w", id, err)
	}
	return &updated, nil
}

func (r *SQLRepository) List(ctx context.Context, projectID string) ([]models.Rank, error) {
	var recs []rankRecord
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND deleted_at IS NULL", projectID).
		Order("created_at, id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks of %s: %w", projectID, err)
	}
	ranks := make([]models.Rank, 0, len(recs))
	for _, rec := range recs {
		ranks = append(ranks, rec.toModel())
	}
	// Drivers disagree on sub-second time ordering; normalize.
	sortRanks(ranks)
	return ranks, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockLive(tx, id); err != nil {
			return err
		}
		return tx.Model(&rankRecord{}).Where("id = ?", id).Update("deleted_at", at.UTC()).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete rank %s: %w", id, err)
	}
	return nil
}

// lockLive loads a live rank inside tx, holding a row lock where the dialect
// supports one.
func (r *SQLRepository) lockLive(tx *gorm.DB, id string) (*models.Rank, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec rankRecord
	err := q.Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.DeletedAt != nil {
		return nil, models.ErrNotFound
	}
	rank := rec.toModel()
	return &rank, nil
}
