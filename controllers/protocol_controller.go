// controllers/protocol_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProtocolController struct{ *Srv }

func NewProtocolController(s *Srv) *ProtocolController { return &ProtocolController{Srv: s} }

func principalRole(c *gin.Context) string {
	v, _ := c.Get(app.CtxRole)
	role, _ := v.(string)
	return role
}

// GET /api/protocols?vehicleId=&status=&page=&size=
// Agents only see their own protocols; gestor and admin see everything.
func (pc *ProtocolController) ListProtocols(c *gin.Context) {
	q := db.ProtocolsQuery{
		VehicleID: c.Query("vehicleId"),
		Status:    c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	if !models.RoleAtLeast(principalRole(c), models.RoleManager) {
		uid, _ := principalID(c)
		q.AgentID = uid
	} else if aid := c.Query("agentId"); aid != "" {
		q.AgentID = aid
	}

	res, err := pc.Repo.ListProtocols(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (pc *ProtocolController) loadVisibleProtocol(c *gin.Context) (*models.Protocol, bool) {
	p, err := pc.Repo.FindProtocolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "protocol not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return nil, false
	}
	if !models.RoleAtLeast(principalRole(c), models.RoleManager) {
		uid, _ := principalID(c)
		if p.AgentID != uid {
			c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
			return nil, false
		}
	}
	return p, true
}

// GET /api/protocols/:id
func (pc *ProtocolController) GetProtocol(c *gin.Context) {
	p, ok := pc.loadVisibleProtocol(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/protocols/:id/document returns the protocol with both checklists, items
// and photo evidence. This is what the printable protocol view renders.
func (pc *ProtocolController) GetProtocolDocument(c *gin.Context) {
	p, ok := pc.loadVisibleProtocol(c)
	if !ok {
		return
	}
	cls, err := pc.Repo.ListChecklists(c.Request.Context(), p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"protocol": p, "checklists": cls})
}
