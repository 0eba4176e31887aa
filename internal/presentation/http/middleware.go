package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/awemart/awemart/internal/application/auth"
	"github.com/awemart/awemart/internal/domain/customer"
	"github.com/awemart/awemart/internal/observability"
	"github.com/awemart/awemart/internal/observability/logctx"
)

const (
	principalKey    = "principal"
	headerPrincipal = "X-Customer-ID"
	headerRequestID = "X-Request-ID"
)

// Principal returns the authenticated customer stored by AuthRequired.
func Principal(c *gin.Context) *customer.Customer {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	cust, _ := v.(*customer.Customer)
	return cust
}

// AuthRequired resolves the caller's principal from the identity header.
// Credential verification happens at login; this is the thin session shell
// the pipeline treats as a black box.
func AuthRequired(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerPrincipal)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		cust, err := authSvc.Principal(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(principalKey, cust)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles.
func RequireRole(roles ...customer.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust := Principal(c)
		if cust == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, r := range roles {
			if cust.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// Observe attaches a request-scoped logger and records HTTP metrics per route.
func Observe(logger observability.Logger, obs observability.Observability) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NopLogger()
	}
	reqCounter := obs.Metrics().Counter(observability.MHTTPRequests)
	durHistogram := obs.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := logger.With(
			observability.F("method", c.Request.Method),
			observability.F("route", c.FullPath()),
		)
		if reqID := c.GetHeader(headerRequestID); reqID != "" {
			reqLogger = reqLogger.With(observability.F("request_id", reqID))
		}
		c.Request = c.Request.WithContext(logctx.With(c.Request.Context(), reqLogger))

		c.Next()

		lat := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		reqCounter.Add(1,
			observability.L("method", c.Request.Method),
			observability.L("route", route),
			observability.L("status", status),
		)
		durHistogram.Observe(lat,
			observability.L("method", c.Request.Method),
			observability.L("route", route),
		)

		reqLogger.Info("http_request",
			observability.F("status", c.Writer.Status()),
			observability.F("latency_seconds", lat),
		)
	}
}
