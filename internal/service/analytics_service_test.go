package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

type mockLister struct {
	evaluations []models.StudentEvaluation
	calls       int
}

func (m *mockLister) List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, error) {
	m.calls++
	return m.evaluations, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = nil
	return nil
}

func TestAnalyticsStats(t *testing.T) {
	lister := &mockLister{evaluations: []models.StudentEvaluation{
		{OverallRating: 5, EngagementLevel: models.EngagementHigh},
		{OverallRating: 5, EngagementLevel: models.EngagementHigh},
		{OverallRating: 2, EngagementLevel: models.EngagementLow},
		{EngagementLevel: "unknown"},
	}}
	svc := NewAnalyticsService(lister, nil, nil, zap.NewNop())

	stats, fromCache, err := svc.Stats(context.Background(), models.EvaluationFilter{GroupID: "g1"})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 4.0, stats.AverageOverallRating, 0.001)
	assert.Equal(t, 2, stats.RatingHistogram[5])
	assert.Equal(t, 1, stats.RatingHistogram[2])
	assert.Equal(t, 2, stats.EngagementHistogram[models.EngagementHigh])
	assert.Equal(t, 1, stats.EngagementHistogram[models.EngagementLow])
	// Unknown engagement values stay out of the histogram.
	assert.NotContains(t, stats.EngagementHistogram, models.EngagementLevel("unknown"))
}

func TestAnalyticsStatsRecomputesScores(t *testing.T) {
	lister := &mockLister{evaluations: []models.StudentEvaluation{
		{
			Parameters: models.ParameterValues{"Homework": models.NumberValue(5)},
			CriteriaMetadata: models.CriteriaSnapshot{
				CriteriaID: "crit1",
				Parameters: models.ParameterSpecs{{Name: "Homework", Type: models.ParameterTypeRating, Weight: 100}},
			},
		},
		{OverallRating: 5, Parameters: models.ParameterValues{"Orphan": models.NumberValue(1)}},
	}}
	svc := NewAnalyticsService(lister, nil, nil, zap.NewNop())

	stats, _, err := svc.Stats(context.Background(), models.EvaluationFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 100, stats.AveragePerformanceScore, 0.001)
}

func TestAnalyticsStatsCacheHit(t *testing.T) {
	lister := &mockLister{evaluations: []models.StudentEvaluation{{OverallRating: 4}}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(lister, cache, nil, zap.NewNop())

	_, fromCache, err := svc.Stats(context.Background(), models.EvaluationFilter{GroupID: "g1"})
	require.NoError(t, err)
	assert.False(t, fromCache)

	stats, fromCache, err := svc.Stats(context.Background(), models.EvaluationFilter{GroupID: "g1"})
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1, lister.calls)

	// A different filter is a different cache key.
	_, fromCache, err = svc.Stats(context.Background(), models.EvaluationFilter{GroupID: "g2"})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 2, lister.calls)
}

func TestAnalyticsSystemMetrics(t *testing.T) {
	svc := NewAnalyticsService(&mockLister{}, nil, NewMetricsService(), zap.NewNop())
	snapshot := svc.SystemMetrics()
	assert.False(t, snapshot.GeneratedAt.IsZero())

	empty := NewAnalyticsService(&mockLister{}, nil, nil, zap.NewNop())
	assert.Equal(t, models.SystemMetrics{}, empty.SystemMetrics())
}

func TestAnalyticsCacheKeyKeepsFieldPositions(t *testing.T) {
	byTrainer := makeAnalyticsCacheKey("stats", "g1", "x", "", "", "", "", "")
	byCourse := makeAnalyticsCacheKey("stats", "g1", "", "x", "", "", "", "")
	assert.NotEqual(t, byTrainer, byCourse)

	stamp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := makeAnalyticsCacheKey("stats", "", "", "", "", "", formatTime(&stamp), "")
	to := makeAnalyticsCacheKey("stats", "", "", "", "", "", "", formatTime(&stamp))
	assert.NotEqual(t, from, to)
}
