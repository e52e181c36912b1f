package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_realtime_subscriptions",
		Help: "Open realtime subscriptions",
	})
	published = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_realtime_published_total",
		Help: "Realtime publish attempts by outcome",
	}, []string{"outcome"})
)
