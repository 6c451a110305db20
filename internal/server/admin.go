package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	State   string `json:"state"`
}

func (s *Server) adminRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLogMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	state := s.State()
	resp := healthResponse{
		Status:  "SERVING",
		Service: s.cfg.ServiceName,
		State:   state.String(),
	}
	code := http.StatusOK
	if state != StateRunning {
		resp.Status = "NOT_SERVING"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, resp)
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrw := newStatusRecorder(w)

		next.ServeHTTP(wrw, r)

		s.logger.Debug("Admin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrw.statusCode),
			zap.Duration("duration", time.Since(start)))
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
