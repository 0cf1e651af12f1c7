package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stockpos/internal/commons"
	"stockpos/internal/config"
	"stockpos/internal/dto"
)

// RouteRegistrar is implemented by each module's controller.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func NewRouter(limits config.RateLimitConfig, logger *zap.Logger, modules ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if limits.RPS > 0 {
		r.Use(rateLimit(limits, logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		commons.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, m := range modules {
		m.RegisterRoutes(r)
	}

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// rateLimit applies one token bucket to the whole API. Burst below 1 is
// raised to 1 so a positive rate always admits requests.
func rateLimit(limits config.RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	burst := limits.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limits.RPS), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				commons.WriteJSON(w, logger, http.StatusTooManyRequests, dto.ErrorResponse{
					TraceID:   middleware.GetReqID(r.Context()),
					Status:    http.StatusTooManyRequests,
					Code:      "RATE_LIMITED",
					Message:   "too many requests",
					Timestamp: time.Now().UTC(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
