package middleware

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP lets loopback and private-range callers, such as an in-cluster
// metrics scraper, skip the limiter.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate()
	}
}
