package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// APIKeyHeader is the header clients authenticate with.
const APIKeyHeader = "X-Api-Key"

// Paths that never require authentication.
var exemptPaths = map[string]bool{
	"/":             true,
	"/ping":         true,
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
}

// APIKey validates the X-Api-Key header on /api routes. An empty expected
// key disables auth so local development works without configuration.
func APIKey(expectedKey string, logger *slog.Logger) app.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, c *app.RequestContext) {
		if expectedKey == "" {
			c.Next(ctx)
			return
		}

		path := string(c.Path())
		if exemptPaths[path] || !strings.HasPrefix(path, "/api") {
			c.Next(ctx)
			return
		}

		provided := string(c.Request.Header.Peek(APIKeyHeader))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expectedKey)) != 1 {
			logger.Warn("rejected request with invalid or missing api key", "path", path)
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid or missing API key",
			})
			return
		}

		c.Next(ctx)
	}
}
