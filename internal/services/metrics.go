package services

import "github.com/prometheus/client_golang/prometheus"

var (
	swipesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipes_total",
			Help: "Swipes recorded, by type.",
		},
		[]string{"type"},
	)
	swipeRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_rejections_total",
			Help: "Swipes rejected before any write, by reason.",
		},
		[]string{"reason"},
	)
	matchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_created_total",
			Help: "Match rows created.",
		},
	)
	blocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blocks_total",
			Help: "Blocks created.",
		},
	)
)

func init() {
	prometheus.MustRegister(swipesTotal, swipeRejectionsTotal, matchesCreatedTotal, blocksTotal)
}
