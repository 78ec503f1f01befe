package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики dashboard-сервиса.
type Metrics struct {
	// Widgets — количество зарегистрированных виджетов.
	Widgets prometheus.Gauge

	// Ticks — количество циклов публикации.
	Ticks prometheus.Counter

	// TickErrors — циклы, завершившиеся с ошибкой.
	TickErrors prometheus.Counter

	// TickDuration — длительность одного цикла публикации.
	TickDuration prometheus.Histogram

	// EntriesPublished — количество отправленных изменений entries.
	EntriesPublished prometheus.Counter

	// RemoteWrites — записи, пришедшие из очереди команд и API.
	RemoteWrites *prometheus.CounterVec

	// Snapshots — сохранённые снимки.
	Snapshots prometheus.Counter

	// HTTPRequests — запросы к HTTP API по методу и коду ответа.
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики в reg.
// nil reg — метрики создаются, но нигде не регистрируются (тесты).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Widgets: f.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_widgets",
			Help: "Number of widgets registered on the dashboard",
		}),
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ticks_total",
			Help: "Total publish loop iterations",
		}),
		TickErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_tick_errors_total",
			Help: "Publish loop iterations that failed",
		}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_tick_duration_seconds",
			Help:    "Duration of a publish loop iteration",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		EntriesPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_entries_published_total",
			Help: "Total entry changes published",
		}),
		RemoteWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_remote_writes_total",
			Help: "Entry writes received from remote clients",
		}, []string{"source", "result"}),
		Snapshots: f.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_snapshots_total",
			Help: "Snapshots persisted",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_api_http_requests_total",
			Help: "Total HTTP requests to the dashboard API",
		}, []string{"method", "code"}),
	}
}

// ObserveRemoteWrite учитывает удалённую запись с результатом ok или error.
// Безопасен для nil *Metrics.
func (m *Metrics) ObserveRemoteWrite(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RemoteWrites.WithLabelValues(source, result).Inc()
}
