package routes

import (
	"github.com/gin-gonic/gin"
	"tips-content-service/internal/auth"
	"tips-content-service/internal/constants"
	"tips-content-service/internal/ingest"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/auth/login", authApi.Login)

	// repository push events trigger a re-sync
	r.POST("/hook", func(c *gin.Context) {
		ingestApi := controllerRegistry[constants.Ingest].(ingest.Api)
		ingestApi.SyncDocuments(c)
	})
}
