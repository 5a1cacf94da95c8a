package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxConcurrentScrapes bounds how many scrapes are served at once.
const maxConcurrentScrapes = 4

// Handler serves the collector's registry in the Prometheus exposition
// format. Scrapes themselves are counted as promhttp_metric_handler_*
// series on the same registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(c.registry, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics:   true,
		MaxRequestsInFlight: maxConcurrentScrapes,
		ErrorHandling:       promhttp.ContinueOnError,
	}))
}
