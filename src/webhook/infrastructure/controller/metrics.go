package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// webhookRequests cuenta invocaciones del webhook por resultado final
	webhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_requests_total",
		Help: "Order webhooks received, by final outcome",
	}, []string{"outcome"}) // processed | skipped | unauthorized | error

	// enrichmentFailures cuenta lookups por item/unidad que no aportaron records
	enrichmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_failures_total",
		Help: "Per-item or per-unit lookup failures that contributed no record",
	})
)
