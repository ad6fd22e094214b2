package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 访问日志中间件，输出与各组件一致的 [Tag] 前缀格式
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.Printf("[HTTP] %s %s %d %s %v",
			c.Request.Method,
			path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(start),
		)
	}
}
