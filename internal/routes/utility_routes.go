package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tips-content-service/internal/controllers"
)

func RegisterUtilityRoutes(r *gin.Engine) {
	r.GET("/heartbeat", controllers.GetHeartBeat)
	r.GET("/status", controllers.GetStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
