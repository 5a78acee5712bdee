package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreExposed(t *testing.T) {
	WebhookEvents.WithLabelValues("user.created", "ok").Inc()
	CatalogMutations.WithLabelValues("category", "created").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(WebhookEvents.WithLabelValues("user.created", "ok")))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marketplace_webhook_events_total")
	assert.Contains(t, w.Body.String(), "marketplace_catalog_mutations_total")
}
