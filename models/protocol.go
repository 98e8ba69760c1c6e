// models/protocol.go
package models

import "time"

const (
	ProtocolTable  = "frota_protocolos"
	DevolucaoTable = "frota_devolucoes"
)

// Protocol status. One-way: em_andamento -> concluido.
const (
	ProtocolOpen      = "em_andamento"
	ProtocolCompleted = "concluido"
	ProtocolCancelled = "cancelado"
)

// Protocol is the custody-open record (empenho). Number is generated by the
// database sequence and unique across the table.
type Protocol struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Number    string `gorm:"size:30;uniqueIndex;not null" json:"number"`
	VehicleID string `gorm:"type:uuid;index;not null" json:"vehicleId"`

	AgentID   string `gorm:"type:uuid;index;not null" json:"agentId"`
	AgentName string `gorm:"size:200;not null" json:"agentName"`

	Reason   string   `gorm:"size:500" json:"reason"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Location string   `gorm:"size:300" json:"location"`

	Status string `gorm:"size:15;not null;default:'em_andamento';index" json:"status"`

	Vehicle   *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Devolucao *Devolucao `gorm:"foreignKey:ProtocolID" json:"devolucao,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Devolucao closes a Protocol. A protocol has at most one.
type Devolucao struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	ProtocolID string `gorm:"type:uuid;uniqueIndex;not null" json:"protocolId"`

	AgentID string `gorm:"type:uuid;index;not null" json:"agentId"`

	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Location string   `gorm:"size:300" json:"location"`
	Notes    string   `gorm:"size:500" json:"notes,omitempty"`

	// Minutes between protocol creation and this return.
	DurationMinutes int64 `gorm:"not null;default:0" json:"durationMinutes"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Protocol) TableName() string  { return ProtocolTable }
func (Devolucao) TableName() string { return DevolucaoTable }

// CustodyDuration computes the time a vehicle spent under a protocol.
func CustodyDuration(openedAt, returnedAt time.Time) int64 {
	if returnedAt.Before(openedAt) {
		return 0
	}
	return int64(returnedAt.Sub(openedAt) / time.Minute)
}
