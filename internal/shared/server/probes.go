package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/server/respond"
)

func registerProbeRoutes(rg gin.IRoutes, svc *health.Service) {
	rg.GET("/health", func(c *gin.Context) {
		respond.OK(c, svc.Status())
	})
	rg.GET("/ready", func(c *gin.Context) {
		report := svc.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.Ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
}
