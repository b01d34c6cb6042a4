package listener

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps a webhook body. Slack payloads are far smaller.
const MaxBodyBytes = 1 << 20

// LimitBody fails reads past limit bytes. It runs before anything buffers
// the body, since the signature is only checked after the whole body is read.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
