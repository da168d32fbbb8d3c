package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/httpx"
	"github.com/ayush/blog-app/backend/internal/logging"
)

// RateLimit allows at most limit requests per client within each fixed
// window. Counters live in Redis so every replica shares them. Clients are
// keyed by user id when authenticated, otherwise by remote IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			bucket := time.Now().UnixNano() / int64(window)
			key := fmt.Sprintf("ratelimit:%s:%d", clientKey(r), bucket)

			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				// fail open
				log.Warn(ctx, "rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if incr.Val() > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window/time.Second)))
				httpx.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
