package services

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
)

type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeVectorStore struct {
	exists  bool
	created *qdrant.CreateCollection
	upserts []*qdrant.UpsertPoints
	deletes []*qdrant.DeletePoints
	results []*qdrant.ScoredPoint
}

func (f *fakeVectorStore) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeVectorStore) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	return nil
}

func (f *fakeVectorStore) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeVectorStore) Query(context.Context, *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	return f.results, nil
}

func (f *fakeVectorStore) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.deletes = append(f.deletes, req)
	return &qdrant.UpdateResult{}, nil
}

func TestJobIndexInitCollection(t *testing.T) {
	store := &fakeVectorStore{}
	idx := NewJobIndexService(store, &fakeEmbedder{}, "jobs", logger.NewNoOpLogger())

	require.NoError(t, idx.InitCollection(context.Background()))
	require.NotNil(t, store.created)
	assert.Equal(t, "jobs", store.created.CollectionName)

	store = &fakeVectorStore{exists: true}
	idx = NewJobIndexService(store, &fakeEmbedder{}, "jobs", logger.NewNoOpLogger())
	require.NoError(t, idx.InitCollection(context.Background()))
	assert.Nil(t, store.created)
}

func TestJobIndexIndexesActiveJobs(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{}
	idx := NewJobIndexService(store, embedder, "jobs", logger.NewNoOpLogger())

	job := &models.Job{ID: 12, Title: "Go Intern", Skills: datatypes.JSONSlice[string]{"Go", "SQL"}, Status: models.JobStatusActive}
	require.NoError(t, idx.IndexJob(context.Background(), job))

	require.Len(t, store.upserts, 1)
	assert.Equal(t, uint64(12), store.upserts[0].Points[0].GetId().GetNum())
	assert.Contains(t, embedder.calls[0], "Skills: Go, SQL")

	job.Status = models.JobStatusArchived
	require.NoError(t, idx.IndexJob(context.Background(), job))
	assert.Len(t, store.upserts, 1)
	assert.Len(t, store.deletes, 1)
}

func TestJobIndexRecommend(t *testing.T) {
	store := &fakeVectorStore{results: []*qdrant.ScoredPoint{
		{Id: qdrant.NewIDNum(4), Score: 0.91},
		{Id: qdrant.NewIDNum(2), Score: 0.72},
	}}
	idx := NewJobIndexService(store, &fakeEmbedder{}, "jobs", logger.NewNoOpLogger())

	matches, err := idx.Recommend(context.Background(), "Go, Docker", 5)
	require.NoError(t, err)
	assert.Equal(t, []JobMatch{{JobID: 4, Score: 0.91}, {JobID: 2, Score: 0.72}}, matches)

	matches, err = idx.Recommend(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestJobIndexEmbedError(t *testing.T) {
	idx := NewJobIndexService(&fakeVectorStore{}, &fakeEmbedder{err: errors.New("quota")}, "jobs", logger.NewNoOpLogger())

	err := idx.IndexJob(context.Background(), &models.Job{ID: 1, Status: models.JobStatusActive})
	assert.ErrorContains(t, err, "quota")
}

func TestDisabledJobIndex(t *testing.T) {
	idx := NewDisabledJobIndex()
	assert.False(t, idx.Enabled())
	matches, err := idx.Recommend(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
