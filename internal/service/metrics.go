package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_submissions_total",
			Help: "Review submissions accepted, by kind.",
		},
		[]string{"kind"},
	)

	votesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_votes_total",
			Help: "Helpfulness vote ledger updates, by kind and action.",
		},
		[]string{"kind", "action"},
	)

	moderationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_moderation_decisions_total",
			Help: "Moderation status changes, by kind and new status.",
		},
		[]string{"kind", "status"},
	)

	abuseReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_abuse_reports_total",
			Help: "Abuse reports recorded, by kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	statsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_stats_cache_requests_total",
			Help: "Rating stats cache lookups, by result.",
		},
		[]string{"result"},
	)
)
