package middleware

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Compress 只压缩 GET 响应；写操作可能返回 204，不能带 Content-Encoding
func Compress(level int) gin.HandlerFunc {
	gz := gzip.Gzip(level)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		gz(c)
	}
}
