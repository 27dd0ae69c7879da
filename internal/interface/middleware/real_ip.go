package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

const realIPKey = "real_ip"

// RealIP stores the client address reported by an edge proxy under "real_ip".
// CF-Connecting-IP wins over the left-most X-Forwarded-For entry; without a
// parsable header gin's ClientIP is used. Clients can forge both headers, so
// only install it behind a proxy that overwrites them.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, ok := proxyIP(c.Request.Header)
		if !ok {
			ip = c.ClientIP()
		}
		c.Set(realIPKey, ip)
		c.Next()
	}
}

func proxyIP(h http.Header) (string, bool) {
	candidates := []string{h.Get("CF-Connecting-IP")}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append(candidates, first)
	}
	for _, s := range candidates {
		if addr, err := netip.ParseAddr(strings.TrimSpace(s)); err == nil {
			return addr.Unmap().String(), true
		}
	}
	return "", false
}

// ipFromCtx prefers the address RealIP stored and falls back to gin's ClientIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	return clientIP(c)
}
