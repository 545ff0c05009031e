package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// StaticCache marks responses as publicly cacheable. Uploaded files are
// written once under random names, so they are also flagged immutable.
func StaticCache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d, immutable", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
