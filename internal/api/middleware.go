package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/RichardoC/couples-gpt/internal/metrics"
	"github.com/RichardoC/couples-gpt/internal/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type userKey struct{}

func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}

// RequireLogin redirects to the login page unless the request carries a
// valid session for a known user.
func (h *Handler) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.sessions.Load(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, err := claims.UserID()
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		user, err := h.users.GetUser(r.Context(), id)
		if err != nil {
			h.logger.Debug("Session for unknown user", zap.Int64("user_id", id), zap.Error(err))
			h.sessions.Clear(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Home)
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/logout", h.RequireLogin(h.Logout))
	mux.HandleFunc("/dashboard", h.RequireLogin(h.Dashboard))
	mux.HandleFunc("/history", h.RequireLogin(h.History))
	mux.HandleFunc("/upload-history", h.RequireLogin(h.UploadHistory))
	mux.HandleFunc("/healthz", h.Healthz)
	mux.Handle("/metrics", promhttp.Handler())
	return h.logRequests(mux)
}

var knownPaths = map[string]bool{
	"/": true, "/login": true, "/logout": true, "/dashboard": true,
	"/history": true, "/upload-history": true, "/healthz": true, "/metrics": true,
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		path := r.URL.Path
		if !knownPaths[path] {
			path = "other"
		}
		metrics.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())

		h.logger.Info("Handled request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}
