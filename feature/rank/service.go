package rank

import (
	"context"
	"errors"
	"time"

	"rank-api/core/cache"
	"rank-api/core/metrics"
	"rank-api/feature/rank/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "rank-api/feature/rank"

// Service handles rank operations.
type Service struct {
	repo    Repository
	cache   *cache.Cache[models.Rank]
	metrics *metrics.Metrics
	logger  *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates a new rank service. Reads are cached for cacheTTL; zero
// disables the cache. m may be nil.
func NewService(repo Repository, logger *zap.Logger, m *metrics.Metrics, cacheTTL time.Duration) *Service {
	return &Service{
		repo:    repo,
		cache:   cache.New[models.Rank](cacheTTL),
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

// CreateItem registers itemID in projectID with an empty score history.
func (s *Service) CreateItem(ctx context.Context, projectID string, req models.CreateItemRequest) (_ *models.Rank, err error) {
	ctx, span := s.startSpan(ctx, "rank.CreateItem", projectID, req.ItemID)
	defer func() { endSpan(span, err) }()

	if err := models.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rank := &models.Rank{
		ProjectID: projectID,
		ItemID:    req.ItemID,
		Min:       *req.Min,
		Max:       *req.Max,
		// Average is meaningless while Total is zero.
		Average:   0,
		Total:     0,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	rank.SetComputedID()

	if err := s.repo.Create(ctx, rank); err != nil {
		return nil, err
	}
	s.cache.Invalidate(rank.ID)
	s.metrics.ItemCreated()
	s.logger.Debug("Item created",
		zap.String("project_id", projectID),
		zap.String("item_id", req.ItemID))
	return rank, nil
}

// GetItem returns the rank of itemID in projectID.
func (s *Service) GetItem(ctx context.Context, projectID, itemID string) (_ *models.Rank, err error) {
	ctx, span := s.startSpan(ctx, "rank.GetItem", projectID, itemID)
	defer func() { endSpan(span, err) }()

	if err := validateIDs(projectID, itemID); err != nil {
		return nil, err
	}

	id := models.ComputeID(projectID, itemID)
	rank, err := s.cache.Get(ctx, id, func(ctx context.Context) (models.Rank, error) {
		r, err := s.repo.Get(ctx, id)
		if err != nil {
			return models.Rank{}, err
		}
		return *r, nil
	})
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

// RankItem folds score into the item's average and returns the new state.
func (s *Service) RankItem(ctx context.Context, projectID, itemID string, req models.RankItemRequest) (_ *models.Rank, err error) {
	ctx, span := s.startSpan(ctx, "rank.RankItem", projectID, itemID)
	defer func() { endSpan(span, err) }()

	if err := validateIDs(projectID, itemID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := models.ComputeID(projectID, itemID)
	rank, err := s.repo.Rank(ctx, id, *req.Score)
	if err != nil {
		if errors.Is(err, models.ErrScoreOutOfRange) {
			s.metrics.ScoreRejected()
		}
		return nil, err
	}
	s.cache.Invalidate(id)
	s.metrics.ScoreRecorded(*req.Score)
	return rank, nil
}

// ListItems returns the live ranks of projectID.
func (s *Service) ListItems(ctx context.Context, projectID string) (_ []models.Rank, err error) {
	ctx, span := s.startSpan(ctx, "rank.ListItems", projectID, "")
	defer func() { endSpan(span, err) }()

	if err := models.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	ranks, err := s.repo.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rank.count", len(ranks)))
	return ranks, nil
}

// DeleteItem soft-deletes the rank of itemID in projectID.
func (s *Service) DeleteItem(ctx context.Context, projectID, itemID string) (err error) {
	ctx, span := s.startSpan(ctx, "rank.DeleteItem", projectID, itemID)
	defer func() { endSpan(span, err) }()

	if err := validateIDs(projectID, itemID); err != nil {
		return err
	}

	id := models.ComputeID(projectID, itemID)
	if err := s.repo.Delete(ctx, id, s.now().UTC().Truncate(time.Millisecond)); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	s.metrics.ItemDeleted()
	s.logger.Debug("Item deleted",
		zap.String("project_id", projectID),
		zap.String("item_id", itemID))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name, projectID, itemID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("rank.project_id", projectID)}
	if itemID != "" {
		attrs = append(attrs, attribute.String("rank.item_id", itemID))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records unexpected failures on the span. Domain errors are normal
// outcomes and leave the span status unset.
func endSpan(span trace.Span, err error) {
	if err != nil && !isDomainError(err) && !errors.Is(err, models.ErrInvalidRequest) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func validateIDs(projectID, itemID string) error {
	if err := models.ValidateProjectID(projectID); err != nil {
		return err
	}
	return models.ValidateItemID(itemID)
}
