package middlewares

import (
	"github.com/gin-gonic/gin"
	"net/http"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		// the API is read-only except for search, login and the repository hook
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		// responses depend on the Authorization header and documents change on every sync,
		// so nothing should be stored by shared caches
		//
		// see https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Cache-Control
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
