// controllers/vehicle_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleController struct{ *Srv }

func NewVehicleController(s *Srv) *VehicleController { return &VehicleController{Srv: s} }

type vehicleReq struct {
	Plate           string `json:"plate" binding:"required"`
	Prefix          string `json:"prefix"`
	Make            string `json:"make"`
	Model           string `json:"model"`
	Year            int    `json:"year"`
	Chassis         string `json:"chassis"`
	Renavam         string `json:"renavam"`
	InitialOdometer int64  `json:"initialOdometer"`
	LicensingStatus string `json:"licensingStatus"`
}

// POST /api/vehicles (gestor+)
func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	var in vehicleReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	v := &models.Vehicle{
		ID:              uuid.NewString(),
		Plate:           in.Plate,
		Prefix:          in.Prefix,
		Make:            in.Make,
		Model:           in.Model,
		Year:            in.Year,
		Chassis:         in.Chassis,
		Renavam:         in.Renavam,
		InitialOdometer: in.InitialOdometer,
		CurrentOdometer: in.InitialOdometer,
		Status:          models.VehicleAvailable,
	}
	if in.LicensingStatus != "" {
		v.LicensingStatus = in.LicensingStatus
	}
	if err := vc.Repo.CreateVehicle(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /api/vehicles?q=&status=&page=&size=
func (vc *VehicleController) ListVehicles(c *gin.Context) {
	q := db.VehiclesQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := vc.Repo.ListVehicles(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/vehicles/available feeds the check-in listing
func (vc *VehicleController) ListAvailable(c *gin.Context) {
	vs, err := vc.Repo.ListAvailableForCheckin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"vehicles": vs})
}

// GET /api/vehicles/custody (gestor+): every vehicle with its open protocol
func (vc *VehicleController) ListCustody(c *gin.Context) {
	rows, err := vc.Repo.ListVehiclesWithOpenProtocol(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"vehicles": rows})
}

// GET /api/vehicles/:id
func (vc *VehicleController) GetVehicle(c *gin.Context) {
	v, err := vc.Repo.FindVehicleByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func vehicleStatusDetail(from, to string) string {
	return fmt.Sprintf("status %s -> %s", from, to)
}

// PUT /api/vehicles/:id (gestor+)
func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	var in struct {
		Prefix          *string `json:"prefix"`
		Make            *string `json:"make"`
		Model           *string `json:"model"`
		Year            *int    `json:"year"`
		Status          *string `json:"status"`
		LicensingStatus *string `json:"licensingStatus"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if in.Prefix != nil {
		fields["prefix"] = *in.Prefix
	}
	if in.Make != nil {
		fields["make"] = *in.Make
	}
	if in.Model != nil {
		fields["model"] = *in.Model
	}
	if in.Year != nil {
		fields["year"] = *in.Year
	}
	if in.Status != nil {
		if !models.ValidVehicleStatus(*in.Status) {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid status"})
			return
		}
		fields["status"] = *in.Status
	}
	if in.LicensingStatus != nil {
		fields["licensing_status"] = *in.LicensingStatus
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}

	ctx := c.Request.Context()
	var prevStatus string
	if in.Status != nil {
		prev, err := vc.Repo.FindVehicleByID(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, app.H{"error": "vehicle not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		prevStatus = prev.Status
	}

	v, err := vc.Repo.UpdateVehicle(ctx, c.Param("id"), fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if in.Status != nil && prevStatus != v.Status {
		uid, _ := principalID(c)
		id := v.ID
		detail := vehicleStatusDetail(prevStatus, v.Status)
		_, _ = vc.Repo.LogAudit(ctx, models.AuditVehicleStatus, uid, principalUsername(c), &id, &detail)
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /api/vehicles/:id (gestor+)
func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	if err := vc.Repo.DeleteVehicleByID(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrVehicleBusy) {
			c.JSON(http.StatusConflict, app.H{"error": "vehicle has an open protocol"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
