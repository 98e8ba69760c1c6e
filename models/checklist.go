// models/checklist.go
package models

import "time"

const (
	ChecklistTable     = "frota_checklists"
	ChecklistItemTable = "frota_checklist_itens"
	PhotoTable         = "frota_fotos"
)

// Fuel quarter scale and oil levels.
const (
	Fuel14 = "1/4"
	Fuel24 = "2/4"
	Fuel34 = "3/4"
	Fuel44 = "4/4"

	OilHigh   = "alto"
	OilMedium = "medio"
	OilLow    = "baixo"
)

// Checklist is a condition snapshot taken at check-in (ProtocolID set) or at
// check-out (DevolucaoID set). Exactly one of the two references is non-nil.
type Checklist struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	ProtocolID  *string `gorm:"type:uuid;index" json:"protocolId,omitempty"`
	DevolucaoID *string `gorm:"type:uuid;index" json:"devolucaoId,omitempty"`

	Odometer  int64  `gorm:"not null" json:"odometer"`
	FuelLevel string `gorm:"size:5;not null" json:"fuelLevel"`
	OilLevel  string `gorm:"size:10;not null" json:"oilLevel"`

	MechanicalOK bool   `gorm:"not null;default:true" json:"mechanicalOk"`
	Observation  string `gorm:"size:500" json:"observation,omitempty"`

	Items  []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items,omitempty"`
	Photos []Photo         `gorm:"foreignKey:ChecklistID" json:"photos,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item situation on a checklist.
const (
	SituationPresent    = "presente"
	SituationIncomplete = "incompleto"
	SituationAbsent     = "ausente"
)

// Older clients sent these synonyms; they are folded into the canonical set
// before anything is persisted.
var legacySituations = map[string]string{
	"conforme":     SituationPresent,
	"ok":           SituationPresent,
	"parcial":      SituationIncomplete,
	"faltando":     SituationAbsent,
	"nao_conforme": SituationAbsent,
}

// NormalizeSituation maps legacy synonyms onto the canonical situation set.
// Unknown values come back unchanged so validation can reject them.
func NormalizeSituation(s string) string {
	if canon, ok := legacySituations[s]; ok {
		return canon
	}
	return s
}

func ValidSituation(s string) bool {
	switch NormalizeSituation(s) {
	case SituationPresent, SituationIncomplete, SituationAbsent:
		return true
	}
	return false
}

type ChecklistItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	ChecklistID string `gorm:"type:uuid;index;not null" json:"checklistId"`
	ItemID      string `gorm:"type:uuid;index;not null" json:"itemId"`

	// presente / incompleto / ausente. Observation is required for anything
	// other than presente.
	Situation   string `gorm:"size:15;not null" json:"situation"`
	Observation string `gorm:"size:500" json:"observation,omitempty"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Photo evidence slots. Four are required per phase.
const (
	PhotoFront = "frontal"
	PhotoLeft  = "lateral_esquerda"
	PhotoRight = "lateral_direita"
	PhotoRear  = "traseira"
	PhotoOther = "outra"
)

// RequiredPhotoTypes lists the four slots every check-in and check-out must fill.
var RequiredPhotoTypes = []string{PhotoFront, PhotoLeft, PhotoRight, PhotoRear}

type Photo struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	ProtocolID  *string `gorm:"type:uuid;index" json:"protocolId,omitempty"`
	DevolucaoID *string `gorm:"type:uuid;index" json:"devolucaoId,omitempty"`
	ChecklistID string  `gorm:"type:uuid;index;not null" json:"checklistId"`

	Type        string `gorm:"size:20;not null" json:"type"`
	URL         string `gorm:"size:500;not null" json:"url"`
	Description string `gorm:"size:300" json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Checklist) TableName() string     { return ChecklistTable }
func (ChecklistItem) TableName() string { return ChecklistItemTable }
func (Photo) TableName() string         { return PhotoTable }
