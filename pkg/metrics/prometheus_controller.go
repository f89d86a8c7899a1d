package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/org-console/pkg/application"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Console page and API requests by route template, method and status.",
	}, []string{"route", "method", "status"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Console request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// PrometheusController exposes the default registry plus gauges over the
// application's view sessions and favorites.
type PrometheusController struct {
	path     string
	registry prometheus.Registerer
	gatherer prometheus.Gatherer
}

func NewPrometheusController(path string, app application.Application) application.Controller {
	return newController(path, app, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func newController(path string, app application.Application, reg prometheus.Registerer, gatherer prometheus.Gatherer) *PrometheusController {
	if path == "" {
		path = "/debug/prometheus"
	}
	register(reg, httpRequests, httpLatency)
	if app != nil {
		register(reg,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "console",
				Name:      "view_sessions",
				Help:      "Live list and form views held for browser sessions.",
			}, func() float64 {
				if app.Views() == nil {
					return 0
				}
				return float64(app.Views().Len())
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "console",
				Name:      "favorites",
				Help:      "Stored favorite shortcuts.",
			}, func() float64 {
				if app.Favorites() == nil {
					return 0
				}
				return float64(app.Favorites().Len())
			}),
		)
	}
	return &PrometheusController{path: path, registry: reg, gatherer: gatherer}
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency keyed by the matched mux
// route template so ids do not explode label cardinality.
func Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
