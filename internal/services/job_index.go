package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
)

// embeddingSize matches text-embedding-004.
const embeddingSize = 768

// VectorStore is the subset of the Qdrant client used by the job index.
type VectorStore interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

type JobMatch struct {
	JobID uint
	Score float32
}

// JobIndexService keeps active jobs searchable by semantic similarity.
type JobIndexService interface {
	Enabled() bool
	InitCollection(ctx context.Context) error
	IndexJob(ctx context.Context, job *models.Job) error
	RemoveJob(ctx context.Context, jobID uint) error
	Recommend(ctx context.Context, text string, limit int) ([]JobMatch, error)
}

type jobIndexService struct {
	store          VectorStore
	embedder       EmbeddingService
	collectionName string
	log            logger.Logger
}

func NewJobIndexService(store VectorStore, embedder EmbeddingService, collectionName string, log logger.Logger) JobIndexService {
	return &jobIndexService{
		store:          store,
		embedder:       embedder,
		collectionName: collectionName,
		log:            log,
	}
}

// NewQdrantClient dials the gRPC endpoint described by urlStr.
func NewQdrantClient(urlStr, apiKey string) (*qdrant.Client, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return client, nil
}

// NewJobIndexFromConfig wires Gemini embeddings to a Qdrant collection. An
// empty Gemini key yields a disabled index. The returned close func releases
// the Qdrant connection.
func NewJobIndexFromConfig(ctx context.Context, geminiKey, embedModel, qdrantURL, qdrantKey, collection string, log logger.Logger) (JobIndexService, func() error, error) {
	noop := func() error { return nil }
	if geminiKey == "" {
		return NewDisabledJobIndex(), noop, nil
	}

	embedder, err := NewGeminiEmbeddingService(ctx, geminiKey, embedModel)
	if err != nil {
		return nil, noop, err
	}

	client, err := NewQdrantClient(qdrantURL, qdrantKey)
	if err != nil {
		return nil, noop, err
	}

	return NewJobIndexService(client, embedder, collection, log), client.Close, nil
}

func (s *jobIndexService) Enabled() bool {
	return true
}

func (s *jobIndexService) InitCollection(ctx context.Context) error {
	exists, err := s.store.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.store.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.log.Info("qdrant collection created", map[string]interface{}{"collection": s.collectionName})
	return nil
}

func (s *jobIndexService) IndexJob(ctx context.Context, job *models.Job) error {
	if job.Status != models.JobStatusActive {
		return s.RemoveJob(ctx, job.ID)
	}

	embedding, err := s.embedder.Embed(ctx, JobDocument(job))
	if err != nil {
		return fmt.Errorf("failed to embed job %d: %w", job.ID, err)
	}

	_, err = s.store.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(uint64(job.ID)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"title":         job.Title,
				"category":      job.Category,
				"is_internship": job.IsInternship,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert job %d: %w", job.ID, err)
	}

	return nil
}

func (s *jobIndexService) RemoveJob(ctx context.Context, jobID uint) error {
	_, err := s.store.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{qdrant.NewIDNum(uint64(jobID))}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete job %d from index: %w", jobID, err)
	}
	return nil
}

func (s *jobIndexService) Recommend(ctx context.Context, text string, limit int) ([]JobMatch, error) {
	if strings.TrimSpace(text) == "" {
		return []JobMatch{}, nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile: %w", err)
	}

	points, err := s.store.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	matches := make([]JobMatch, 0, len(points))
	for _, point := range points {
		matches = append(matches, JobMatch{
			JobID: uint(point.GetId().GetNum()),
			Score: point.GetScore(),
		})
	}
	return matches, nil
}

// JobDocument is the text embedded for a job.
func JobDocument(job *models.Job) string {
	parts := []string{job.Title, job.Description}
	if len(job.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(job.Skills, ", "))
	}
	if len(job.Requirements) > 0 {
		parts = append(parts, "Requirements: "+strings.Join(job.Requirements, "; "))
	}
	if job.Category != "" {
		parts = append(parts, "Category: "+job.Category)
	}
	return strings.Join(parts, "\n")
}

type disabledJobIndex struct{}

// NewDisabledJobIndex is used when no embedding backend is configured.
func NewDisabledJobIndex() JobIndexService {
	return disabledJobIndex{}
}

func (disabledJobIndex) Enabled() bool { return false }
func (disabledJobIndex) InitCollection(context.Context) error { return nil }
func (disabledJobIndex) IndexJob(context.Context, *models.Job) error { return nil }
func (disabledJobIndex) RemoveJob(context.Context, uint) error { return nil }
func (disabledJobIndex) Recommend(context.Context, string, int) ([]JobMatch, error) {
	return []JobMatch{}, nil
}
