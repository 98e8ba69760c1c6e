// models/item.go
package models

import "time"

const (
	ItemTable        = "frota_itens"
	VehicleItemTable = "frota_veiculo_itens"
)

// Item categories and types are fixed closed sets.
const (
	CategorySafety        = "seguranca"
	CategorySignaling     = "sinalizacao"
	CategoryMechanical    = "mecanico"
	CategoryElectrical    = "eletrico"
	CategoryCommunication = "comunicacao"
	CategoryOther         = "outro"

	TypeEquipment = "equipamento"
	TypeTool      = "ferramenta"
	TypePPE       = "epi"
	TypeDocument  = "documento"
	TypeAccessory = "acessorio"
	TypeOther     = "outro"
)

// Item is the global catalog entry, independent of any vehicle.
type Item struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Category    string    `gorm:"size:20;not null;default:'outro'" json:"category"`
	Type        string    `gorm:"size:20;not null;default:'outro'" json:"type"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	ObligationMandatory   = "obrigatorio"
	ObligationRecommended = "recomendado"
	ObligationOptional    = "opcional"
)

// VehicleItemConfig binds a catalog item to a vehicle and defines whether the
// checklists of that vehicle must cover it.
type VehicleItemConfig struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID  string `gorm:"type:uuid;index:idx_veiculo_item,unique;not null" json:"vehicleId"`
	ItemID     string `gorm:"type:uuid;index:idx_veiculo_item,unique;not null" json:"itemId"`
	Quantity   int    `gorm:"not null;default:1" json:"quantity"`
	Obligation string `gorm:"size:15;not null;default:'obrigatorio'" json:"obligation"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string              { return ItemTable }
func (VehicleItemConfig) TableName() string { return VehicleItemTable }
