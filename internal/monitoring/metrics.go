// internal/monitoring/metrics.go
package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Metrics holds the Prometheus instruments for one pipeline process.
type Metrics struct {
	registry *prometheus.Registry

	FetchRequests   *prometheus.CounterVec
	FetchRetries    *prometheus.CounterVec
	EventsExtracted *prometheus.CounterVec
	FixturesEmitted prometheus.Counter
	TeamsErrored    prometheus.Counter
	SinkPosts       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// NewMetrics registers the pipeline's instruments on a private registry so
// tests can build as many instances as they like.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "fetch_requests_total",
			Help:      "HTTP fetches by upstream host and outcome.",
		}, []string{"host", "status"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "fetch_retries_total",
			Help:      "Fetch retries by upstream host.",
		}, []string{"host"}),
		EventsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "events_extracted_total",
			Help:      "Raw events extracted by source.",
		}, []string{"source"}),
		FixturesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "fixtures_emitted_total",
			Help:      "Deduplicated fixtures handed to the sink or export.",
		}),
		TeamsErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "teams_errored_total",
			Help:      "Team iterations abandoned after a recoverable error.",
		}),
		SinkPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixturebot",
			Name:      "sink_posts_total",
			Help:      "Batch submissions by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixturebot",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	registry.MustRegister(
		m.FetchRequests,
		m.FetchRetries,
		m.EventsExtracted,
		m.FixturesEmitted,
		m.TeamsErrored,
		m.SinkPosts,
		m.RunDuration,
	)
	return m
}

// FetchRequest counts one HTTP attempt against host with its outcome. It
// satisfies the fetch client's recorder interface.
func (m *Metrics) FetchRequest(host, status string) {
	m.FetchRequests.WithLabelValues(host, status).Inc()
}

// FetchRetry counts one retry against host.
func (m *Metrics) FetchRetry(host string) {
	m.FetchRetries.WithLabelValues(host).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics and /healthz.
type Server struct {
	srv    *http.Server
	logger utils.Logger
}

// NewServer builds the metrics endpoint on addr.
func NewServer(addr string, metrics *Metrics, logger utils.Logger) *Server {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background until Stop.
func (s *Server) Start() {
	go func() {
		s.logger.Infof("metrics listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("metrics server: %v", err)
		}
	}()
}

// Stop shuts the endpoint down, letting in-flight scrapes finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
