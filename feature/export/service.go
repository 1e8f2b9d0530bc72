package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"rank-api/core/metrics"
	"rank-api/core/storage"
	rankmodels "rank-api/feature/rank/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// objectTimeLayout names export objects; it sorts lexically in time order.
const objectTimeLayout = "20060102T150405.000Z"

// Source provides the ranks of a project.
type Source interface {
	ListItems(ctx context.Context, projectID string) ([]rankmodels.Rank, error)
}

// Snapshot is the document written to storage.
type Snapshot struct {
	ProjectID  string            `json:"projectId"`
	ExportedAt time.Time         `json:"exportedAt"`
	Items      []rankmodels.Rank `json:"items"`
}

// Result describes a written export.
type Result struct {
	Object string `json:"object"`
	Count  int    `json:"count"`
	Size   int64  `json:"size"`
}

// Object is an export already present in storage.
type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Service writes rank snapshots to object storage.
type Service struct {
	source  Source
	client  storage.Client
	bucket  string
	region  string
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a new export service. m may be nil.
func NewService(source Source, client storage.Client, cfg storage.Config, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		source:  source,
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Prefix returns the object prefix holding the exports of projectID.
func Prefix(projectID string) string {
	return "exports/" + projectID + "/"
}

// Export writes the live ranks of projectID as one JSON object.
func (s *Service) Export(ctx context.Context, projectID string) (res *Result, err error) {
	defer func() { s.metrics.ExportFinished(err) }()

	if err := rankmodels.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	items, err := s.source.ListItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks: %w", err)
	}

	at := s.now().UTC()
	data, err := json.Marshal(Snapshot{ProjectID: projectID, ExportedAt: at, Items: items})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return nil, err
	}

	object := Prefix(projectID) + at.Format(objectTimeLayout) + ".json"
	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.logger.Info("Export written",
		zap.String("project_id", projectID),
		zap.String("object", object),
		zap.Int("count", len(items)))
	return &Result{Object: object, Count: len(items), Size: int64(len(data))}, nil
}

// List returns the exports of projectID, oldest first.
func (s *Service) List(ctx context.Context, projectID string) ([]Object, error) {
	if err := rankmodels.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	objects := []Object{}
	if !exists {
		return objects, nil
	}

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    Prefix(projectID),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", obj.Err)
		}
		objects = append(objects, Object{Name: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}
