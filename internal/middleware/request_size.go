package middleware

import (
	"net/http"
	"strings"

	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	DefaultMaxRequestSize = 1 << 20
	DefaultMaxUploadSize  = 10 << 20
)

// RequestSizeLimitMiddleware caps request bodies. Multipart uploads get
// uploadLimit, everything else bodyLimit.
func RequestSizeLimitMiddleware(bodyLimit, uploadLimit int64) gin.HandlerFunc {
	if bodyLimit <= 0 {
		bodyLimit = DefaultMaxRequestSize
	}
	if uploadLimit <= 0 {
		uploadLimit = DefaultMaxUploadSize
	}

	return func(c *gin.Context) {
		limit := bodyLimit
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadLimit
		}

		if c.Request.ContentLength > limit {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
