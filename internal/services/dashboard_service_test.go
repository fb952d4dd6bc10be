package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civiq/internal/view"
	"civiq/pkg/constants"
)

func TestDashboardService_CachesAndInvalidates(t *testing.T) {
	repo := newMemRequestRepo(seedRequests()...)
	cache := newMemCache()
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	stats, err := svc.GetStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, view.DashboardStats{Pending: 1, Total: 2}, stats)
	assert.Equal(t, 1, repo.lists)

	key := fmt.Sprintf(constants.CacheKeyDashboardStats, constants.AllServices)
	assert.Contains(t, cache.data, key)
	assert.Equal(t, time.Minute, cache.ttl[key])

	_, err = svc.GetStats(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists, "повторный запрос должен прийти из кеша")

	svc.Invalidate(ctx, "Road Repair")
	assert.NotContains(t, cache.data, key)

	_, err = svc.GetStats(ctx, constants.AllServices)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestDashboardService_ScopedStats(t *testing.T) {
	repo := newMemRequestRepo(seedRequests()...)
	svc := NewDashboardService(repo, newMemCache(), time.Minute, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	stats, err := svc.GetStats(context.Background(), "Water Supply")
	require.NoError(t, err)
	assert.Equal(t, view.DashboardStats{Total: 1}, stats)
	assert.Equal(t, "Water Supply", repo.last.Scope)
}

func TestDashboardService_CacheFailureIsNotFatal(t *testing.T) {
	repo := newMemRequestRepo(seedRequests()...)
	cache := newMemCache()
	cache.err = errors.New("redis down")
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	stats, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}
