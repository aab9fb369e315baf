package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/repository"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
	"github.com/noah-isme/sma-evaluasi-api/pkg/jobs"
)

type memoryExportJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.ExportJob
	seq  int
}

func newMemoryExportJobRepo() *memoryExportJobRepo {
	return &memoryExportJobRepo{jobs: map[string]*models.ExportJob{}}
}

func (m *memoryExportJobRepo) Create(_ context.Context, job *models.ExportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job.ID = fmt.Sprintf("job-%d", m.seq)
	job.CreatedAt = time.Now().UTC()
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *memoryExportJobRepo) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memoryExportJobRepo) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		at := *params.FinishedAt
		job.FinishedAt = &at
	}
	return nil
}

func (m *memoryExportJobRepo) ListQueued(context.Context, int) ([]models.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExportJob
	for _, job := range m.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memoryExportJobRepo) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExportJob
	for _, job := range m.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	jobs []jobs.Job[models.ExportDataset]
	err  error
}

func (r *recordingDispatcher) Enqueue(job jobs.Job[models.ExportDataset]) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

type failingGenerator struct{ err error }

func (f failingGenerator) Generate(context.Context, *models.ExportJob) (*ExportResult, error) {
	return nil, f.err
}

func TestExportJobServiceCreateValidatesAndEnqueues(t *testing.T) {
	exporter, _ := newExportFixture(t)
	repo := newMemoryExportJobRepo()
	queue := &recordingDispatcher{}
	svc := NewExportJobService(repo, queue, exporter, nil, nil, nil, ExportJobConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Dataset: "grades", Format: "csv"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Dataset: models.ExportDatasetSummary, Format: " XLSX "})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Equal(t, models.ExportDatasetSummary, queue.jobs[0].Payload)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", stored.Params.Format)
	assert.Equal(t, "2024-05-02", stored.Params.Today)
}

func TestExportJobServiceCreateMarksFailedWhenQueueRejects(t *testing.T) {
	exporter, _ := newExportFixture(t)
	repo := newMemoryExportJobRepo()
	svc := NewExportJobService(repo, &recordingDispatcher{err: errors.New("stopped")}, exporter, nil, nil, nil, ExportJobConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Dataset: models.ExportDatasetIssues, Format: "csv"})
	require.Error(t, err)
	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.NotNil(t, job.FinishedAt)
}

func TestExportWorkerHandleThenDownload(t *testing.T) {
	exporter, _ := newExportFixture(t)
	repo := newMemoryExportJobRepo()
	queue := &recordingDispatcher{}
	svc := NewExportJobService(repo, queue, exporter, nil, nil, nil, ExportJobConfig{})
	worker := NewExportWorker(repo, exporter, nil, 2, nil)

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{Dataset: models.ExportDatasetDiscipline, Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))

	status, err := svc.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)

	token := extractToken(*status.ResultURL)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "csv", string(download.Format))
	assert.Contains(t, download.Filename, "dashboard_discipline_")

	_, err = svc.ResolveDownload(context.Background(), token+"x")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestExportWorkerRequeuesThenFails(t *testing.T) {
	repo := newMemoryExportJobRepo()
	job := &models.ExportJob{Dataset: models.ExportDatasetSummary, Params: models.ExportJobParams{Format: "csv"}, Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))
	worker := NewExportWorker(repo, failingGenerator{err: errors.New("disk full")}, nil, 1, nil)

	err := worker.Handle(context.Background(), jobs.Job[models.ExportDataset]{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	stored, _ := repo.GetByID(context.Background(), job.ID)
	assert.Equal(t, models.ExportStatusQueued, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "disk full", *stored.ErrorMessage)

	err = worker.Handle(context.Background(), jobs.Job[models.ExportDataset]{ID: job.ID, Attempt: 1})
	require.Error(t, err)
	stored, _ = repo.GetByID(context.Background(), job.ID)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	assert.Equal(t, 100, stored.Progress)
}

func TestExportJobServiceStatusNotFound(t *testing.T) {
	exporter, _ := newExportFixture(t)
	svc := NewExportJobService(newMemoryExportJobRepo(), &recordingDispatcher{}, exporter, nil, nil, nil, ExportJobConfig{})
	_, err := svc.GetStatus(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportJobServiceCleanupRemovesExpiredFiles(t *testing.T) {
	exporter, files := newExportFixture(t)
	repo := newMemoryExportJobRepo()
	queue := &recordingDispatcher{}
	svc := NewExportJobService(repo, queue, exporter, nil, nil, nil, ExportJobConfig{ResultTTL: time.Minute})
	worker := NewExportWorker(repo, exporter, nil, 0, nil)
	worker.now = func() time.Time { return time.Now().Add(-time.Hour) }

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Dataset: models.ExportDatasetSummary, Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))
	job, _ := repo.GetByID(context.Background(), queue.jobs[0].ID)
	claims, err := exporter.ParseToken(extractToken(*job.ResultURL), true)
	require.NoError(t, err)

	svc.CleanupExpired(context.Background())
	_, err = files.Open(claims.Path)
	assert.Error(t, err)
}

func TestExportJobServiceRecoverRequeuesQueuedJobs(t *testing.T) {
	exporter, _ := newExportFixture(t)
	repo := newMemoryExportJobRepo()
	require.NoError(t, repo.Create(context.Background(), &models.ExportJob{Dataset: models.ExportDatasetIssues, Status: models.ExportStatusQueued}))
	require.NoError(t, repo.Create(context.Background(), &models.ExportJob{Dataset: models.ExportDatasetIssues, Status: models.ExportStatusFinished}))
	queue := &recordingDispatcher{}
	svc := NewExportJobService(repo, queue, exporter, nil, nil, nil, ExportJobConfig{})

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "job-1", queue.jobs[0].ID)
}
