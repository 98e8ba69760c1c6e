// controllers/item_controller.go
package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// ===== Catalog (gestor+) =====

// POST /api/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in struct {
		Name        string `json:"name" binding:"required"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it := &models.Item{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Category:    in.Category,
		Type:        in.Type,
		Description: in.Description,
	}
	if it.Category == "" {
		it.Category = models.CategoryOther
	}
	if it.Type == "" {
		it.Type = models.TypeOther
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items?category=
func (ic *ItemController) ListItems(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// PUT /api/items/:id
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in struct {
		Name        *string `json:"name"`
		Category    *string `json:"category"`
		Type        *string `json:"type"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}

// DELETE /api/items/:id
func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Repo.DeleteItemByID(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ===== Per-vehicle configuration (gestor+) =====

// PUT /api/vehicles/:id/items/:itemId (upsert)
func (ic *ItemController) ConfigureVehicleItem(c *gin.Context) {
	var in struct {
		Quantity   int    `json:"quantity"`
		Obligation string `json:"obligation"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}
	switch in.Obligation {
	case "":
		in.Obligation = models.ObligationMandatory
	case models.ObligationMandatory, models.ObligationRecommended, models.ObligationOptional:
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid obligation"})
		return
	}

	ctx := c.Request.Context()
	if _, err := ic.Repo.FindItemByID(ctx, c.Param("itemId")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	cfg := &models.VehicleItemConfig{
		ID:         uuid.NewString(),
		VehicleID:  c.Param("id"),
		ItemID:     c.Param("itemId"),
		Quantity:   in.Quantity,
		Obligation: in.Obligation,
	}
	if err := ic.Repo.ConfigureVehicleItem(ctx, cfg); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/vehicles/:id/items
func (ic *ItemController) ListVehicleItems(c *gin.Context) {
	cfgs, err := ic.Repo.ListVehicleItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": cfgs})
}

// DELETE /api/vehicles/:id/items/:itemId
func (ic *ItemController) RemoveVehicleItem(c *gin.Context) {
	if err := ic.Repo.RemoveVehicleItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
