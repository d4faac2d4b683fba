package routes

import (
	"github.com/gin-gonic/gin"
	"tips-content-service/internal/auth"
	"tips-content-service/internal/constants"
	"tips-content-service/internal/content"
	"tips-content-service/internal/ingest"
	"tips-content-service/internal/lint"
	"tips-content-service/internal/middlewares"
)

func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any) {

	authGroup := r.Group("")

	authGroup.Use(middlewares.AuthHandler())
	{
		// content
		contentApi := controllerRegistry[constants.Content].(content.Api)
		authGroup.GET("/content/navigation-items", contentApi.GetNavigationTrees)
		authGroup.GET("/content/documents/*permalink", contentApi.GetDocumentByPermalink)
		authGroup.POST("/content/documents/search", contentApi.GetDocumentSearchTermMatches)

		// ingest
		ingestApi := controllerRegistry[constants.Ingest].(ingest.Api)
		authGroup.GET("/content/sync", ingestApi.SyncDocuments)

		// lint
		lintApi := controllerRegistry[constants.Lint].(lint.Api)
		authGroup.GET("/content/lint", lintApi.GetLintReport)

		// auth
		authApi := controllerRegistry[constants.Auth].(auth.Api)
		authGroup.GET("/auth/token", authApi.GetAuthToken)
		authGroup.POST("/auth/refresh", authApi.RefreshToken)
		authGroup.GET("/auth/hash/:pw", authApi.CreatePasswordHash)
	}
}
