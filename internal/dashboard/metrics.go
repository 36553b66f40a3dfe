package dashboard

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts dashboard renders per view on a private registry.
type Metrics struct {
	reg             *prometheus.Registry
	Renders         *prometheus.CounterVec
	RenderErrors    *prometheus.CounterVec
	RenderSeconds   *prometheus.HistogramVec
	SuppliersLoaded prometheus.Gauge
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dashboard_renders_total"}, []string{"view"})
	renderErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dashboard_render_errors_total"}, []string{"view"})
	renderSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_render_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	suppliers := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dashboard_suppliers_loaded"})

	r.MustRegister(renders, renderErrors, renderSeconds, suppliers)
	return &Metrics{
		reg:             r,
		Renders:         renders,
		RenderErrors:    renderErrors,
		RenderSeconds:   renderSeconds,
		SuppliersLoaded: suppliers,
	}
}

func (m *Metrics) observe(view string, start time.Time, err error) {
	m.Renders.WithLabelValues(view).Inc()
	m.RenderSeconds.WithLabelValues(view).Observe(time.Since(start).Seconds())
	if err != nil {
		m.RenderErrors.WithLabelValues(view).Inc()
	}
}

func (m *Metrics) Handler() http.Handler { return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}) }
