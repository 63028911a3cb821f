package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PullService exposes the registered metrics over HTTP for Prometheus to scrape.
type PullService struct {
	server *http.Server
}

// NewPullService creates a new prometheus pull service listening on endpoint.
func NewPullService(endpoint string) *PullService {
	return &PullService{
		server: &http.Server{
			Addr:           endpoint,
			Handler:        promhttp.Handler(),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}
}

// StartInstrumentation serves the metrics in the background.
func (s *PullService) StartInstrumentation() {
	log.WithField("endpoint", s.server.Addr).Info("Initializing pull metrics service.")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("endpoint", s.server.Addr).Errorf("Unable to initialize prometheus pull service: %v", err)
		}
	}()
}

// Close stops serving.
func (s *PullService) Close() error {
	return s.server.Close()
}
