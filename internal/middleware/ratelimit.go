package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/cache"
	"github.com/sealdrop/sealdrop/internal/metrics"
)

// MsgRateLimited is returned with 429 responses.
const MsgRateLimited = "Too many requests, please try again later"

// Limiter consumes one token for (scope, clientIP).
type Limiter interface {
	Allow(ctx context.Context, scope, clientIP string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	// Limiter is the shared Redis token bucket. When nil, a process-local
	// sliding window from httprate is used instead.
	Limiter Limiter
	Enabled bool
	RPS     int // Requests per second
	Burst   int
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// scope separates buckets, e.g. "login" and "register".
func RateLimitIP(cfg RateLimitConfig, scope string) func(http.Handler) http.Handler {
	if !cfg.Enabled || cfg.RPS <= 0 || cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Limiter == nil {
		return localRateLimit(cfg, scope)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			result, err := cfg.Limiter.Allow(r.Context(), scope, ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", scope),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result.Limit, result.Remaining)

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", scope),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", retryAfterSeconds(result.RetryAfter)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				cfg.Metrics.IncRateLimited(scope)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// localRateLimit approximates the token bucket with a sliding window of
// Burst requests per Burst/RPS seconds, keyed by client IP and route.
func localRateLimit(cfg RateLimitConfig, scope string) func(http.Handler) http.Handler {
	window := time.Duration(float64(cfg.Burst) / float64(cfg.RPS) * float64(time.Second))

	return httprate.Limit(cfg.Burst, window,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			cfg.Logger.Warn("rate limit exceeded",
				slog.String("scope", scope),
				slog.String("ip", getClientIP(r)),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			cfg.Metrics.IncRateLimited(scope)
			writeError(w, apperr.TooManyRequests, MsgRateLimited)
		}),
	)
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int64) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(retryAfter), 10))
	writeError(w, apperr.TooManyRequests, MsgRateLimited)
}

// retryAfterSeconds rounds up so clients never retry too early.
func retryAfterSeconds(d time.Duration) int64 {
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// getClientIP returns the host part of RemoteAddr. chimiddleware.RealIP runs
// first, so proxy headers are already applied.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
