// internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/common/metrics"
	"mentoloop-waitlist/internal/common/observability"
	"mentoloop-waitlist/internal/notification"
	"mentoloop-waitlist/internal/waitlist"
)

// Server wires the HTTP surface: the waitlist pipeline endpoints plus health
// and metrics. Each submission request gets its own orchestrator built from
// the shared store and dispatcher.
type Server struct {
	store      *waitlist.Store
	dispatcher *notification.Dispatcher
	obs        *observability.Observability
	logger     logger.Logger
	router     chi.Router
}

func NewServer(store *waitlist.Store, dispatcher *notification.Dispatcher, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		store:      store,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	// the form is embedded on the marketing site, origins are open
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"success": false,
			"error":   "Method not allowed",
		})
	})

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/waitlist", s.handleWaitlistSubmit)
	r.Get("/api/waitlist/exists", s.handleEmailExists)
	r.Post("/api/send-email", s.handleSendEmail)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"database": s.store.Configured(),
		"email":    s.dispatcher.Configured(),
	}
	writeJSON(w, http.StatusOK, status)
}

// requestMetrics records per-route request duration.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
