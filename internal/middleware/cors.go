package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var privateOriginPattern = regexp.MustCompile(`^http://(192\.168\.\d+\.\d+|10\.\d+\.\d+\.\d+|172\.(1[6-9]|2[0-9]|3[0-1])\.\d+\.\d+):\d+$`)

// OriginPolicy decides which browser origins may talk to the server: localhost, private
// network addresses, the server's own LAN address and any explicitly configured origin.
type OriginPolicy struct {
	localIP string
	extra   map[string]struct{}
}

// NewOriginPolicy creates a policy. localIP may be empty when it could not be discovered.
func NewOriginPolicy(localIP string, extra []string) *OriginPolicy {
	p := &OriginPolicy{localIP: localIP, extra: make(map[string]struct{}, len(extra))}
	for _, o := range extra {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			p.extra[o] = struct{}{}
		}
	}
	return p
}

// Allow reports whether origin is accepted.
func (p *OriginPolicy) Allow(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.extra[origin]; ok {
		return true
	}
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	if privateOriginPattern.MatchString(origin) {
		return true
	}
	return p.localIP != "" && strings.HasPrefix(origin, "http://"+p.localIP+":")
}

// CORS returns a Gin middleware that echoes allowed origins back and answers preflights.
func CORS(policy *OriginPolicy) gin.HandlerFunc {
	if policy == nil {
		panic("OriginPolicy cannot be nil for CORS middleware")
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if !policy.Allow(origin) {
				logrus.WithField("origin", origin).Warn("CORS: origin not allowed")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not allowed by CORS"})
				return
			}
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
