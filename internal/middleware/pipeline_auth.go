package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

const (
	apiKeyHeader = "X-API-Key"
	callerKey    = "caller"

	// CallerPipeline marks requests authenticated with the pipeline API key.
	CallerPipeline = "pipeline"
)

// PipelineAuthMiddleware admits batch callers presenting apiKey in the
// X-API-Key header. With no key configured every pipeline route answers 503.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			WriteError(c, apperrors.ErrPipelineNotConfigured)
			c.Abort()
			return
		}

		presented := []byte(c.GetHeader(apiKeyHeader))
		if subtle.ConstantTimeCompare(presented, expected) != 1 {
			logger.Get().Warnw("pipeline key rejected",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"key_present", len(presented) > 0,
			)
			WriteError(c, apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}

		c.Set(callerKey, CallerPipeline)
		c.Next()
	}
}

// Caller reports how the request was authenticated, or "" when no caller
// marker was set.
func Caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
