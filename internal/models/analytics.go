package models

import "time"

// EvaluationStats aggregates a filtered set of evaluations for dashboards.
// Averages are computed by streaming over the set at read time; performance
// scores are recomputed per record, never read from storage.
type EvaluationStats struct {
	Count                   int                     `json:"count"`
	AverageOverallRating    float64                 `json:"average_overall_rating"`
	AveragePerformanceScore float64                 `json:"average_performance_score"`
	RatingHistogram         map[int]int             `json:"rating_histogram"`
	EngagementHistogram     map[EngagementLevel]int `json:"engagement_histogram"`
}

// SystemMetrics represents system level analytics captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	EvaluationsScored        uint64    `json:"evaluations_scored"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
