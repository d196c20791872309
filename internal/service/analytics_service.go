package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/scoring"
)

type evaluationLister interface {
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, error)
}

// AnalyticsService aggregates stored evaluations for dashboards. Statistics
// are computed by streaming over the filtered set; performance scores are
// recomputed per record so they always reflect the current scoring rules.
type AnalyticsService struct {
	evaluations evaluationLister
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(evaluations evaluationLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{evaluations: evaluations, cache: cache, metrics: metrics, logger: logger}
}

// Stats returns aggregated evaluation statistics for the filter. The boolean
// indicates whether data originated from cache.
func (s *AnalyticsService) Stats(ctx context.Context, filter models.EvaluationFilter) (*models.EvaluationStats, bool, error) {
	cacheKey := makeAnalyticsCacheKey("stats", filter.GroupID, filter.TrainerID, filter.CourseID,
		filter.SessionID, filter.StudentID, formatTime(filter.DateFrom), formatTime(filter.DateTo))
	var cached models.EvaluationStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get stats cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	evaluations, err := s.evaluations.List(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_stats", time.Since(start))
	}

	stats := computeStats(evaluations)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache stats", zap.Error(err))
		}
	}
	return stats, false, nil
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func computeStats(evaluations []models.StudentEvaluation) *models.EvaluationStats {
	stats := &models.EvaluationStats{
		RatingHistogram:     make(map[int]int),
		EngagementHistogram: make(map[models.EngagementLevel]int),
	}
	var ratingSum, scoreSum, rated int
	for i := range evaluations {
		eval := &evaluations[i]
		stats.Count++
		scoreSum += scoring.Compute(eval)
		if eval.OverallRating > 0 {
			ratingSum += eval.OverallRating
			rated++
			stats.RatingHistogram[eval.OverallRating]++
		}
		if eval.EngagementLevel.Valid() {
			stats.EngagementHistogram[eval.EngagementLevel]++
		}
	}
	if rated > 0 {
		stats.AverageOverallRating = float64(ratingSum) / float64(rated)
	}
	if stats.Count > 0 {
		stats.AveragePerformanceScore = float64(scoreSum) / float64(stats.Count)
	}
	return stats
}

// makeAnalyticsCacheKey emits one segment per part, keeping empty parts, so
// the same value in different filter fields never maps to the same key.
func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
