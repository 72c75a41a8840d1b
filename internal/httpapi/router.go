package httpapi

import (
	"net/http"
	"time"

	"aesthetica/internal/logger"
)

func NewRouter(handler *Handler, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handler.healthz)
	mux.HandleFunc("GET /docs", handler.swaggerUI)
	mux.HandleFunc("GET /docs/", handler.swaggerUI)
	mux.HandleFunc("GET /docs/openapi.json", handler.swaggerSpec)
	mux.HandleFunc("GET /api/v1/stats", handler.stats)
	mux.HandleFunc("GET /api/v1/availability", handler.availability)
	mux.HandleFunc("GET /api/v1/history", handler.history)
	mux.HandleFunc("GET /api/v1/badges", handler.badges)
	mux.HandleFunc("GET /api/v1/levels", handler.levels)
	mux.HandleFunc("PUT /api/v1/profile", handler.updateProfile)
	mux.HandleFunc("PUT /api/v1/settings/api-key", handler.setAPIKey)
	mux.HandleFunc("POST /api/v1/challenges", handler.startChallenge)
	mux.HandleFunc("GET /api/v1/challenges/active", handler.activeChallenge)
	mux.HandleFunc("PUT /api/v1/challenges/{id}/draft", handler.draftAnswer)
	mux.HandleFunc("POST /api/v1/challenges/{id}/submit", handler.submit)
	mux.HandleFunc("POST /api/v1/challenges/{id}/complete", handler.complete)
	mux.HandleFunc("DELETE /api/v1/challenges/{id}", handler.cancel)

	return withRequestLogging(log, withCORS(withJSONContentType(mux)))
}

func withJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Truncate(time.Millisecond).String(),
			"remote", r.RemoteAddr,
		)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
