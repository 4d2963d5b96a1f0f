package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/gamedash/internal/api/handlers"
	"github.com/wonny/gamedash/pkg/logger"
)

// Handlers groups every endpoint handler the router mounts
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Presets   *handlers.PresetHandler
	Snapshots *handlers.SnapshotHandler
	Live      *handlers.LiveHandler
}

// NewRouter creates and configures the HTTP router.
// limiter throttles /api requests; nil disables throttling.
// ⭐ SSOT: routes are configured only in this function
func NewRouter(h Handlers, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Live dashboard
	r.HandleFunc("/ws", h.Live.Serve).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, log))
	}

	// Dataset and aggregate endpoints
	api.HandleFunc("/dataset", h.Dashboard.GetDataset).Methods("GET")
	api.HandleFunc("/options", h.Dashboard.GetOptions).Methods("GET")
	api.HandleFunc("/aggregate", h.Dashboard.GetAggregate).Methods("GET")
	api.HandleFunc("/aggregate", h.Dashboard.PostAggregate).Methods("POST")
	api.HandleFunc("/dashboard", h.Dashboard.GetDashboard).Methods("GET")
	api.HandleFunc("/charts/{chart}.svg", h.Dashboard.GetChart).Methods("GET")

	// Presets
	api.HandleFunc("/presets", h.Presets.List).Methods("GET")
	api.HandleFunc("/presets/{name}", h.Presets.Get).Methods("GET")

	// Snapshots
	api.HandleFunc("/snapshots", h.Snapshots.Create).Methods("POST")
	api.HandleFunc("/snapshots", h.Snapshots.List).Methods("GET")
	api.HandleFunc("/snapshots/{id}", h.Snapshots.Get).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "gamedash-api",
	})
}

// statusRecorder captures the response status for logging.
// It forwards Hijack so websocket upgrades pass through.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// rateLimitMiddleware rejects requests with 429 once the token bucket is empty
func rateLimitMiddleware(limiter *rate.Limiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithField("path", r.URL.Path).Warn("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
