package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// 评分聚合乐观锁冲突次数
	ratingCASConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "film_rating_cas_conflicts_total",
			Help: "Optimistic lock conflicts while updating movie rating aggregates",
		},
	)

	summaryGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "film_ai_summary_generations_total",
			Help: "AI summary generation attempts by result",
		},
		[]string{"result"},
	)

	cleanupRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "film_retention_cleaned_total",
			Help: "Rows physically removed by retention cleanup",
		},
		[]string{"entity"},
	)
)

func init() {
	prometheus.MustRegister(ratingCASConflicts)
	prometheus.MustRegister(summaryGenerations)
	prometheus.MustRegister(cleanupRemoved)
}
