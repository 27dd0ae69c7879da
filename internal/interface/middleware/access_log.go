package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/pkg/metrics"
)

// AccessLog counts every request in m and, when logger is non-nil, writes one
// structured line per request. Authorization headers are never logged.
func AccessLog(logger *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// raw paths of unmatched requests would blow up label cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.HTTPRequest(c.Request.Method, route, strconv.Itoa(status))

		if logger == nil {
			return
		}
		fields := logrus.Fields{
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         ipFromCtx(c),
			"request_id": c.GetString("request_id"),
		}
		if id := IdentityFrom(c); id.Authenticated() {
			fields["user_id"] = id.UserID
		}
		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
