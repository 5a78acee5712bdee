// metrics.go - Prometheus collectors exposed on /metrics

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the service.
var Registry = prometheus.NewRegistry()

var (
	// WebhookEvents counts identity webhook deliveries by event type and outcome.
	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "webhook_events_total",
		Help:      "Identity provider webhook deliveries by type and outcome.",
	}, []string{"type", "outcome"})

	// RoleSyncPushes counts metadata pushes to the identity provider.
	RoleSyncPushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "role_sync_pushes_total",
		Help:      "Role metadata pushes by outcome.",
	}, []string{"outcome"})

	// CatalogMutations counts successful catalog writes.
	CatalogMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "catalog_mutations_total",
		Help:      "Catalog writes by entity and action.",
	}, []string{"entity", "action"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		WebhookEvents,
		RoleSyncPushes,
		CatalogMutations,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
