package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newStubCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.setCalls)
}

func TestCacheServiceMissIsNotAnError(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newStubCacheRepo(), metrics, time.Minute, nil, true)

	var out map[string]int
	hit, err := svc.Get(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "present", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(context.Background(), "present", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])
	assert.Equal(t, uint64(1), metrics.Snapshot().CacheMisses)
}

func TestCacheServiceGetSurfacesBackendErrors(t *testing.T) {
	repo := newStubCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.False(t, hit)
}

func TestNilCacheServiceIsDisabled(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.Invalidate(context.Background(), "dash:*"))
}
