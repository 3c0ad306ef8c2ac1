package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for catalog loads and banners.
type Metrics struct {
	CatalogLoads   *prometheus.CounterVec
	VisibleBanners prometheus.Histogram
	Dismissals     *prometheus.CounterVec
	DebugClears    prometheus.Counter
}

// New registers and returns the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcer_catalog_loads_total",
			Help: "Catalog loads by result (ok, failed).",
		}, []string{"result"}),
		VisibleBanners: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "announcer_visible_banners",
			Help:    "Banners visible per page load.",
			Buckets: prometheus.LinearBuckets(0, 1, 8), // 0 .. 7
		}),
		Dismissals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcer_dismissals_total",
			Help: "Dismiss requests by outcome (dismissed, ignored).",
		}, []string{"outcome"}),
		DebugClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "announcer_debug_clears_total",
			Help: "Dismissal sets cleared through the debug surface.",
		}),
	}
	reg.MustRegister(m.CatalogLoads, m.VisibleBanners, m.Dismissals, m.DebugClears)
	return m
}

func (m *Metrics) CatalogLoaded(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.CatalogLoads.WithLabelValues("ok").Inc()
		return
	}
	m.CatalogLoads.WithLabelValues("failed").Inc()
}

func (m *Metrics) Rendered(n int) {
	if m == nil {
		return
	}
	m.VisibleBanners.Observe(float64(n))
}

func (m *Metrics) Dismissed(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Dismissals.WithLabelValues("dismissed").Inc()
		return
	}
	m.Dismissals.WithLabelValues("ignored").Inc()
}

func (m *Metrics) Cleared() {
	if m == nil {
		return
	}
	m.DebugClears.Inc()
}
