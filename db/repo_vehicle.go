// db/repo_vehicle.go
package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"errors"
	"strings"
	"time"
)

var ErrOdometerRegression = errors.New("odometer lower than last recorded value")

func (r *Repo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.CurrentOdometer < v.InitialOdometer {
		v.CurrentOdometer = v.InitialOdometer
	}
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *Repo) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.DB.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) UpdateVehicle(ctx context.Context, id string, fields map[string]any) (*models.Vehicle, error) {
	// The odometer only moves through checklists, never through plain edits.
	delete(fields, "current_odometer")
	if err := r.DB.WithContext(ctx).Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindVehicleByID(ctx, id)
}

func (r *Repo) DeleteVehicleByID(ctx context.Context, id string) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Protocol{}).
		Where("vehicle_id = ? AND status = ?", id, models.ProtocolOpen).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrVehicleBusy
	}
	return r.DB.WithContext(ctx).Delete(&models.Vehicle{ID: id}).Error
}

type VehiclesQuery struct {
	Q      string // plate/prefix/model fuzzy match
	Status string
	Page   int
	Size   int
}

type PagedVehicles struct {
	Total    int64            `json:"total"`
	Vehicles []models.Vehicle `json:"vehicles"`
}

func (r *Repo) ListVehicles(ctx context.Context, q VehiclesQuery) (*PagedVehicles, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Vehicle{})
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(plate) LIKE ? OR LOWER(prefix) LIKE ? OR LOWER(model) LIKE ?", pat, pat, pat)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var vs []models.Vehicle
	if err := tx.Order("prefix, plate").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&vs).Error; err != nil {
		return nil, err
	}
	return &PagedVehicles{Total: total, Vehicles: vs}, nil
}

// ListAvailableForCheckin feeds the check-in listing: disponivel vehicles with
// no open protocol. This is a UX filter only; the real guard is the row lock
// plus the partial unique index in CreateCheckin.
func (r *Repo) ListAvailableForCheckin(ctx context.Context) ([]models.Vehicle, error) {
	var vs []models.Vehicle
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.VehicleAvailable).
		Where("id NOT IN (?)", r.DB.Model(&models.Protocol{}).
			Select("vehicle_id").
			Where("status = ?", models.ProtocolOpen)).
		Order("prefix, plate").
		Find(&vs).Error
	return vs, err
}

// VehicleCustodyRow is the admin listing: each vehicle joined with its current
// open protocol, if any.
type VehicleCustodyRow struct {
	ID              string    `json:"id"`
	Plate           string    `json:"plate"`
	Prefix          string    `json:"prefix"`
	Model           string    `json:"model"`
	Status          string    `json:"status"`
	CurrentOdometer int64     `json:"currentOdometer"`
	UpdatedAt       time.Time `json:"updatedAt"`

	ProtocolID     *string    `json:"protocolId,omitempty"`
	ProtocolNumber *string    `json:"protocolNumber,omitempty"`
	AgentID        *string    `json:"agentId,omitempty"`
	AgentName      *string    `json:"agentName,omitempty"`
	CheckedOutAt   *time.Time `json:"checkedOutAt,omitempty"`
}

func (r *Repo) ListVehiclesWithOpenProtocol(ctx context.Context) ([]VehicleCustodyRow, error) {
	db := r.DB.WithContext(ctx)

	// Latest open protocol per vehicle; the partial unique index makes
	// DISTINCT ON defensive rather than load-bearing.
	sub := db.
		Table(models.ProtocolTable+" p").
		Select(`DISTINCT ON (p.vehicle_id) p.id, p.vehicle_id, p.number, p.agent_id, p.agent_name, p.created_at`).
		Where("p.status = ?", models.ProtocolOpen).
		Order("p.vehicle_id, p.created_at DESC")

	var rows []VehicleCustodyRow
	err := db.
		Table(models.VehicleTable + " v").
		Select(`
			v.id, v.plate, v.prefix, v.model, v.status, v.current_odometer, v.updated_at,
			op.id         AS protocol_id,
			op.number     AS protocol_number,
			op.agent_id,
			op.agent_name,
			op.created_at AS checked_out_at
		`).
		Joins("LEFT JOIN (?) AS op ON op.vehicle_id = v.id", sub).
		Order("v.prefix, v.plate").
		Scan(&rows).Error
	return rows, err
}
