package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwestin/portsweep/internal/logging"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes the metrics registry over HTTP. It is optional and only
// started when a listen address is configured; long scans can then be
// observed with a Prometheus scrape or a plain curl.
type Server struct {
	addr    string
	httpSrv *http.Server
	logger  *logging.Logger
}

// NewServer creates a metrics HTTP server for the given instance.
func NewServer(addr string, m *Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	return &Server{
		addr:   addr,
		logger: logger.WithComponent("metrics"),
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.logger.Info("metrics server listening", "addr", s.addr)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
