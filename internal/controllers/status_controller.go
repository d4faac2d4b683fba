package controllers

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"tips-content-service/internal/api"
)

// GetHeartBeat answers liveness probes.
//
// @Router /heartbeat [get]
// @Success 200
func GetHeartBeat(c *gin.Context) {
	c.AbortWithStatus(http.StatusOK)
}

// GetStatus reports that the service is up.
//
// @Router /status [get]
// @Success 200 {object} api.RestJsonResponse{data=string}
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "running", nil))
}
