package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/studypal/pkg/response"
)

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that skip the limiter.
type AllowFunc func(c *gin.Context) bool

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyByIP limits by gin's ClientIP, which only trusts configured proxies.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + clientIP(c)
	}
}

// KeyByIPAndPath gives every route its own budget per IP.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "rl:path:" + path + ":ip:" + clientIP(c)
	}
}

// KeyByUserID limits authenticated callers per user and everyone else per IP.
// It must run after ResolveIdentity.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		id := IdentityFrom(c)
		if !id.Authenticated() {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + strconv.FormatInt(id.UserID, 10)
	}
}

// hitScript increments the window counter, starts the window on the first hit
// and returns {count, remaining ttl in ms} in one round trip.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Duration, error) {
	res, err := hitScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return int(res[0]), ttl, nil
}

// RateLimit allows limit requests per window for each key using a fixed window
// counter in Redis. A nil client disables limiting, and Redis errors fail open.
// Responses carry X-RateLimit-Limit, -Remaining and -Reset; rejected ones also Retry-After.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, ttl, err := hit(c.Request.Context(), rdb, keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}

		reset := strconv.Itoa(int(ttl.Round(time.Second) / time.Second))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, limit-count)))
		c.Header("X-RateLimit-Reset", reset)

		if count > limit {
			c.Header("Retry-After", reset)
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
