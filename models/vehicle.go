// models/vehicle.go
package models

import "time"

const VehicleTable = "frota_veiculos"

// Operational status of a vehicle. Stored as Portuguese strings, matching the
// vocabulary the fleet uses on paper.
const (
	VehicleAvailable   = "disponivel"
	VehicleCheckedOut  = "empenhada"
	VehicleReturned    = "devolvida"
	VehicleMaintenance = "manutencao"
	VehicleInoperative = "inoperante"
	VehicleCrashed     = "batida"
	VehicleDamaged     = "avariada"
)

type Vehicle struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	Plate  string `gorm:"size:10;uniqueIndex;not null" json:"plate"`
	Prefix string `gorm:"size:20;index" json:"prefix"`
	Make   string `gorm:"size:60" json:"make"`
	Model  string `gorm:"size:60" json:"model"`
	Year   int    `json:"year"`

	Chassis string `gorm:"size:30" json:"chassis"`
	Renavam string `gorm:"size:20" json:"renavam"`

	// CurrentOdometer never decreases; every checklist write re-checks the floor.
	CurrentOdometer int64 `gorm:"not null;default:0" json:"currentOdometer"`
	InitialOdometer int64 `gorm:"not null;default:0" json:"initialOdometer"`

	Status          string `gorm:"size:20;not null;default:'disponivel';index" json:"status"`
	LicensingStatus string `gorm:"size:20;default:'em_dia'" json:"licensingStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vehicle) TableName() string { return VehicleTable }

func ValidVehicleStatus(s string) bool {
	switch s {
	case VehicleAvailable, VehicleCheckedOut, VehicleReturned,
		VehicleMaintenance, VehicleInoperative, VehicleCrashed, VehicleDamaged:
		return true
	}
	return false
}
