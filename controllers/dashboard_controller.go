// controllers/dashboard_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_fleet_custody/app"

	"github.com/gin-gonic/gin"
)

// GET /api/dashboard/summary (gestor+)
func (s *Srv) DashboardSummary(c *gin.Context) {
	sum, err := s.Repo.DashboardSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}
