package admin

import (
	"log/slog"
	"net/http"
	"time"
)

// requestLogger logs admin requests. Requests changing the mock are logged at
// info level, reads at debug level.
func requestLogger(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		level := slog.LevelDebug
		if r.Method != http.MethodGet && r.Method != http.MethodHead && sw.status < http.StatusBadRequest {
			level = slog.LevelInfo
		}
		log.Log(r.Context(), level, "admin request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
