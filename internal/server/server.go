package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/UnknownOlympus/datemap/internal/cache"
	"github.com/UnknownOlympus/datemap/internal/dates"
	"github.com/UnknownOlympus/datemap/internal/markers"
	"github.com/UnknownOlympus/datemap/internal/metrics"
	"github.com/UnknownOlympus/datemap/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	viewDates   = "dates"
	viewMarkers = "markers"

	errLoadDates = "failed to load dates"
)

// Server exposes the date list and the map markers read from the dates CSV.
type Server struct {
	log      *slog.Logger
	csvPath  string
	store    cache.Store // store is optional; without it markers rely on CSV coordinates only.
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

type datesResponse struct {
	Dates []models.DateRecord `json:"dates"`
	Total int                 `json:"total"`
}

type markersResponse struct {
	Center  models.Coordinates `json:"center"`
	Markers []markers.Marker   `json:"markers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a server reading dates from csvPath. store may be nil.
func New(
	log *slog.Logger,
	csvPath string,
	store cache.Store,
	metrics *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{log: log, csvPath: csvPath, store: store, metrics: metrics, gatherer: gatherer}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return mux
}

// ListenAndServe serves on port until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	readTimeout := 5
	writeTimeout := 10
	shutdownTimeout := 5
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting view server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("view server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down view server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("view server failed: %w", err)
	}

	return nil
}

func (s *Server) handleDates(writer http.ResponseWriter, req *http.Request) {
	records, err := dates.Load(s.csvPath)
	if err != nil {
		s.fail(writer, req, viewDates, err)
		return
	}

	s.metrics.ViewRequests.WithLabelValues(viewDates, "ok").Inc()
	s.writeJSON(writer, req, http.StatusOK, datesResponse{Dates: records, Total: len(records)})
}

func (s *Server) handleMarkers(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	records, err := dates.Load(s.csvPath)
	if err != nil {
		s.fail(writer, req, viewMarkers, err)
		return
	}

	var geo *cache.Cache
	if s.store != nil {
		if geo, err = s.store.Load(ctx); err != nil {
			s.log.WarnContext(ctx, "Geocoding cache unavailable, using CSV coordinates only", "error", err)
			geo = nil
		}
	}

	s.metrics.ViewRequests.WithLabelValues(viewMarkers, "ok").Inc()
	s.writeJSON(writer, req, http.StatusOK, markersResponse{
		Center:  markers.DefaultCoordinates,
		Markers: markers.Build(records, geo),
	})
}

func (s *Server) handleHealth(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if _, err := os.Stat(s.csvPath); err != nil {
		status, body = http.StatusServiceUnavailable, "dates file unavailable"
	}
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (s *Server) fail(writer http.ResponseWriter, req *http.Request, view string, err error) {
	s.log.ErrorContext(req.Context(), "Failed to load dates", "view", view, "error", err)
	s.metrics.ViewRequests.WithLabelValues(view, "error").Inc()
	s.writeJSON(writer, req, http.StatusInternalServerError, errorResponse{Error: errLoadDates})
}

func (s *Server) writeJSON(writer http.ResponseWriter, req *http.Request, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		s.log.ErrorContext(req.Context(), "failed to write reply", "error", err)
	}
}
