package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/stats"
)

const dashboardCachePattern = "dash:*"

type problemLister interface {
	List(ctx context.Context) ([]models.Problem, error)
}

type programLister interface {
	List(ctx context.Context) ([]models.Program, error)
}

type disciplineLogLister interface {
	List(ctx context.Context) ([]models.DisciplineLog, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// DashboardConfig controls cache lifetime and the calendar used for "today".
type DashboardConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

// DashboardService loads the three collections and computes the dashboard.
type DashboardService struct {
	problems problemLister
	programs programLister
	logs     disciplineLogLister
	cache    dashboardCache
	metrics  *MetricsService
	cfg      DashboardConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(problems problemLister, programs programLister, logs disciplineLogLister, cache dashboardCache, metrics *MetricsService, cfg DashboardConfig, logger *zap.Logger) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		problems: problems,
		programs: programs,
		logs:     logs,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Today returns the current ISO date in the configured timezone.
func (s *DashboardService) Today() string {
	return stats.Today(s.now(), s.cfg.Location)
}

// Snapshot fetches the three collections concurrently. A failed fetch leaves
// that collection empty and is recorded in Failed; only a cancelled context
// fails the whole read.
func (s *DashboardService) Snapshot(ctx context.Context) (stats.Snapshot, error) {
	var (
		snap stats.Snapshot
		mu   sync.Mutex
	)
	degrade := func(entity models.EntityType, err error) {
		s.logger.Warn("dashboard list failed", zap.String("entity", string(entity)), zap.Error(err))
		mu.Lock()
		snap.Failed = append(snap.Failed, entity)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		problems, err := s.problems.List(ctx)
		if err != nil {
			degrade(models.EntityProblems, err)
			problems = nil
		}
		snap.Problems = problems
		return nil
	})
	g.Go(func() error {
		programs, err := s.programs.List(ctx)
		if err != nil {
			degrade(models.EntityPrograms, err)
			programs = nil
		}
		snap.Programs = programs
		return nil
	})
	g.Go(func() error {
		logs, err := s.logs.List(ctx)
		if err != nil {
			degrade(models.EntityDiscipline, err)
			logs = nil
		}
		snap.Logs = logs
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return stats.Snapshot{}, err
	}
	sort.Slice(snap.Failed, func(i, j int) bool { return snap.Failed[i] < snap.Failed[j] })
	return snap, nil
}

// Summary returns the computed dashboard and whether it came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	today := s.Today()
	cacheKey := fmt.Sprintf("dash:summary:%s", today)
	if cached, hit := s.tryCache(ctx, cacheKey); hit {
		return cached, true, nil
	}

	start := time.Now()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	summary := stats.Compute(snap, today)
	summary.GeneratedAt = s.now().UTC()
	s.metrics.ObserveDashboardBuild(time.Since(start))

	if len(summary.Degraded) == 0 {
		s.persistCache(ctx, cacheKey, &summary)
	}
	return &summary, false, nil
}

// Suggestions returns the autocomplete lists of the current dashboard.
func (s *DashboardService) Suggestions(ctx context.Context) (*dto.Suggestions, bool, error) {
	summary, hit, err := s.Summary(ctx)
	if err != nil {
		return nil, false, err
	}
	return &summary.Suggestions, hit, nil
}

// Invalidate drops every cached dashboard.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, dashboardCachePattern)
}

// Cache read failures are treated as misses; the cache layer already logs them.
func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.DashboardResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.DashboardResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
