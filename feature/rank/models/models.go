package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a rank does not exist or was deleted.
	ErrNotFound = errors.New("rank not found")
	// ErrAlreadyExists is returned when creating a rank whose id is taken.
	ErrAlreadyExists = errors.New("rank already exists")
	// ErrScoreOutOfRange is returned for a score outside [min, max].
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

// Rank is the aggregate score state of one item in one project.
type Rank struct {
	// ID is ProjectID followed by ItemID. Both are 21-character nanoids in
	// practice, so the concatenation is unambiguous.
	ID        string  `json:"id" firestore:"id"`
	ProjectID string  `json:"projectId" firestore:"projectId"`
	ItemID    string  `json:"itemId" firestore:"itemId"`
	Total     int64   `json:"total" firestore:"total"`
	Average   float64 `json:"average" firestore:"average"`
	// Min is the lowest score the item accepts (1 for a 1-5 scale).
	Min float64 `json:"min" firestore:"min"`
	// Max is the highest score the item accepts (5 for a 1-5 scale).
	Max       float64    `json:"max" firestore:"max"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt" firestore:"deletedAt"`
}

// ComputeID returns the primary key of the rank of itemID in projectID.
func ComputeID(projectID, itemID string) string {
	return projectID + itemID
}

// ComputedID returns the primary key derived from the rank's project and item.
func (r *Rank) ComputedID() string {
	return ComputeID(r.ProjectID, r.ItemID)
}

// SetComputedID stores the derived primary key in ID.
func (r *Rank) SetComputedID() {
	r.ID = r.ComputedID()
}

// IsDeleted reports whether the rank was soft-deleted.
func (r *Rank) IsDeleted() bool {
	return r.DeletedAt != nil
}

// UpdateScore folds score into the running average and increments Total.
func (r *Rank) UpdateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < r.Min || score > r.Max {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrScoreOutOfRange, score, r.Min, r.Max)
	}
	r.Average = (r.Average*float64(r.Total) + score) / float64(r.Total+1)
	r.Total++
	return nil
}

// CreateItemRequest registers an item for ranking.
type CreateItemRequest struct {
	ItemID string   `json:"itemId" validate:"required,max=256,excludesall=/"`
	Min    *float64 `json:"min" validate:"required"`
	Max    *float64 `json:"max" validate:"required"`
}

// Validate for validating CreateItemRequest struct
func (r *CreateItemRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if math.IsNaN(*r.Min) || math.IsNaN(*r.Max) || *r.Max <= *r.Min {
		return fmt.Errorf("%w: max must be greater than min", ErrInvalidRequest)
	}
	return nil
}

// RankItemRequest submits one score for an item.
type RankItemRequest struct {
	Score *float64 `json:"score" validate:"required"`
}

// Validate for validating RankItemRequest struct
func (r *RankItemRequest) Validate() error {
	return validateStruct(r)
}

// ValidateProjectID checks a project id taken from the request path.
func ValidateProjectID(projectID string) error {
	return validateVar("projectId", projectID)
}

// ValidateItemID checks an item id taken from the request path.
func ValidateItemID(itemID string) error {
	return validateVar("itemId", itemID)
}

func validateVar(name, value string) error {
	if err := validator.New().Var(value, "required,max=256,excludesall=/"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, name, err)
	}
	return nil
}

func validateStruct(s any) error {
	validate := validator.New()

	err := validate.Struct(s)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: %v", ErrInvalidRequest, messages)
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return nil
}
