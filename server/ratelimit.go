package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-reddit-gateway/internal/config"
)

// RateLimitConfig defines the rate limiting parameters for one profile.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Rate limit profiles. Auth endpoints hit Reddit's own token endpoints, so
// they get the tighter budget. Overridable via RATELIMIT_{profile}_* env
// vars.
var (
	StrictLimit  = parseRateLimitFromEnv("STRICT", RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30})
	LenientLimit = parseRateLimitFromEnv("LENIENT", RateLimitConfig{RequestsPerWindow: 300, Window: time.Minute, Burst: 300})
)

func parseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	cfg := defaultConfig
	if requests, err := strconv.Atoi(config.GetEnv("RATELIMIT_"+prefix+"_REQUESTS", "")); err == nil && requests > 0 {
		cfg.RequestsPerWindow = requests
	}
	if windowSec, err := strconv.Atoi(config.GetEnv("RATELIMIT_"+prefix+"_WINDOW_SEC", "")); err == nil && windowSec > 0 {
		cfg.Window = time.Duration(windowSec) * time.Second
	}
	if burst, err := strconv.Atoi(config.GetEnv("RATELIMIT_"+prefix+"_BURST", "")); err == nil && burst > 0 {
		cfg.Burst = burst
	}
	return cfg
}

// clientIP extracts the caller's address, honouring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		rate:  rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst: cfg.Burst,
	}
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return limiter.(*rate.Limiter)
}

// RateLimitMiddleware limits requests per client IP with the given profile.
func RateLimitMiddleware(cfg RateLimitConfig) func(http.HandlerFunc) http.HandlerFunc {
	rl := newRateLimiter(cfg)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !rl.getLimiter(key).Allow() {
				log.Warn().Str("ip", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{
					Error:  "rate_limited",
					Detail: "too many requests, try again later",
				})
				return
			}
			next(w, r)
		}
	}
}
