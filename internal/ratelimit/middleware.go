package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware guards an anonymous endpoint with the given policy, keying by
// client identity. Denied requests receive 429 with a Retry-After header set
// to the policy window in seconds.
func Middleware(limiter *Limiter, endpoint string, policy Policy, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity := ClientIdentity(c.Request)
		allowed, _ := limiter.AdmitPolicy(EndpointKey(identity, endpoint), policy)
		if !allowed {
			logger.Warn("request rate limited",
				zap.String("endpoint", endpoint),
				zap.String("client", identity))
			TooManyRequests(c, policy)
			return
		}
		c.Next()
	}
}

// TooManyRequests writes the standard 429 response for the policy and aborts
// the request.
func TooManyRequests(c *gin.Context, policy Policy) {
	retryAfter := int(policy.Window.Seconds())
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many requests",
		"retry_after": retryAfter,
	})
}
