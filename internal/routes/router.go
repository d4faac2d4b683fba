package routes

import (
	"github.com/gin-gonic/gin"
	"tips-content-service/internal/middlewares"
)

func InitRouter(engine *gin.Engine, controllerRegistry map[int]any) {
	InitMiddleware(engine)

	RegisterProtectedRoutes(engine, controllerRegistry)
	RegisterPublicRoutes(engine, controllerRegistry)
	RegisterUtilityRoutes(engine)
}

func InitMiddleware(engine *gin.Engine) {
	engine.Use(middlewares.CORSMiddleware())
	engine.Use(middlewares.MetricsHandler())
}
