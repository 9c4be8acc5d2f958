package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultAllowHeaders = "Content-Type, Authorization, X-Request-ID"

// corsMiddleware answers preflights and echoes the caller's origin when it is allowed. Credentials
// are allowed, so a wildcard is never sent back when the request carries an Origin.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		headers := c.Writer.Header()
		if value := resolveOrigin(origin, allowed); value != "" {
			headers.Set("Access-Control-Allow-Origin", value)
			headers.Add("Vary", "Origin")
			if value != "*" {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
			headers.Set("Access-Control-Allow-Headers", requested)
		} else {
			headers.Set("Access-Control-Allow-Headers", defaultAllowHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveOrigin(requestOrigin string, allowed []string) string {
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	for _, candidate := range allowed {
		if candidate == "*" {
			if requestOrigin != "" {
				return requestOrigin
			}
			return "*"
		}
		if requestOrigin != "" && strings.EqualFold(candidate, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}
