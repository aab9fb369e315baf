package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type stubCacheRepo struct {
	mu       sync.Mutex
	store    map[string][]byte
	deleted  []string
	getErr   error
	setCalls int
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{store: map[string][]byte{}}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.setCalls++
	s.store[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

func newDashboardFixture(cache *CacheService) (*DashboardService, *fakeProblemRepo, *fakeDisciplineRepo) {
	problems := &fakeProblemRepo{items: []models.Problem{
		{ID: "p1", Title: "Guru terlambat", Category: "SDM", RootCause: "Jadwal", Status: models.ProblemStatusOpen, Priority: models.PriorityHigh, PJ: "Waka"},
		{ID: "p2", Title: "Sampah", Category: "Sarpras", RootCause: " jadwal ", Status: models.ProblemStatusDone},
	}}
	programs := &fakeProgramRepo{items: []models.Program{
		{ID: "g1", Title: "Tahfidz", ImplProgress: 60, GoalProgress: 50, ProblemNote: "Kurang ustadz", PJ: "Kepala"},
	}}
	logs := &fakeDisciplineRepo{items: []models.DisciplineLog{
		{ID: "l1", StudentName: "Ahmad", StudentClass: "7A", Points: 5, Date: "2024-05-02"},
		{ID: "l2", StudentName: "Ahmad", StudentClass: "7A", Points: 5, Date: "2024-05-01"},
		{ID: "l3", StudentName: "Budi", StudentClass: "8B", Points: -2, Date: "2024-05-02"},
	}}
	svc := NewDashboardService(problems, programs, logs, cache, nil, DashboardConfig{}, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	return svc, problems, logs
}

func TestDashboardServiceSummaryComputesAndCaches(t *testing.T) {
	repo := newStubCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc, _, _ := newDashboardFixture(cache)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-05-02", summary.Today)
	assert.Equal(t, 3, summary.IssueStats.Total)
	assert.Equal(t, 2, summary.IssueStats.Critical)
	require.NotNil(t, summary.IssueStats.DominantRoot)
	assert.Equal(t, "Jadwal", summary.IssueStats.DominantRoot.Label)
	assert.Equal(t, 2, summary.IssueStats.DominantRoot.Count)
	assert.Equal(t, 1, summary.Discipline.PositiveCount)
	assert.Equal(t, 2, summary.Discipline.TodayCount)
	require.Len(t, summary.Discipline.AttentionList, 1)
	assert.Equal(t, "Ahmad", summary.Discipline.AttentionList[0].Name)
	assert.Equal(t, 1, repo.setCalls)

	cached, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, summary.IssueStats.Total, cached.IssueStats.Total)
	assert.Equal(t, *summary.IssueStats.HealthScore, *cached.IssueStats.HealthScore)
}

func TestDashboardServiceInvalidateForcesRecompute(t *testing.T) {
	repo := newStubCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc, problems, _ := newDashboardFixture(cache)

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)

	problems.items = problems.items[:1]
	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Equal(t, []string{"dash:*"}, repo.deleted)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, summary.Counts.Problems)
}

func TestDashboardServiceCacheReadFailureFallsBack(t *testing.T) {
	repo := newStubCacheRepo()
	repo.getErr = errors.New("redis down")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc, _, _ := newDashboardFixture(cache)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, summary.Counts.Logs)
}

func TestDashboardServiceDegradesFailedListToEmpty(t *testing.T) {
	repo := newStubCacheRepo()
	svc, _, logs := newDashboardFixture(NewCacheService(repo, nil, time.Minute, nil, true))
	logs.listErr = errors.New("timeout")

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []models.EntityType{models.EntityDiscipline}, summary.Degraded)
	assert.Equal(t, 0, summary.Counts.Logs)
	assert.Equal(t, 2, summary.Counts.Problems)
	assert.Equal(t, 1, summary.Counts.Programs)
	assert.Empty(t, summary.Discipline.Students)
	assert.Empty(t, repo.store)

	logs.listErr = nil
	summary, hit, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, summary.Degraded)
	assert.Equal(t, 3, summary.Counts.Logs)
}

func TestDashboardServiceSnapshotFailsOnCancelledContext(t *testing.T) {
	svc, _, _ := newDashboardFixture(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboardServiceSuggestionsAndToday(t *testing.T) {
	svc, _, _ := newDashboardFixture(nil)
	jakarta := time.FixedZone("WIB", 7*3600)
	svc.cfg.Location = jakarta
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC) }
	assert.Equal(t, "2024-05-03", svc.Today())

	suggestions, _, err := svc.Suggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SDM", "Sarpras"}, suggestions.Categories)
	assert.Equal(t, []string{"Ahmad", "Budi"}, suggestions.Students)
}

func TestDashboardServiceInvalidateWithoutCache(t *testing.T) {
	svc, _, _ := newDashboardFixture(nil)
	assert.NoError(t, svc.Invalidate(context.Background()))
}
