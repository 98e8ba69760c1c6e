// wizard/flow.go
package wizard

import (
	"Gin_postgres_redis_fleet_custody/config"
)

// Mode selects which custody transition the wizard drives. Both modes share
// the same steps, validators and machine; only the odometer floor, the target
// entity and the status transition differ.
type Mode string

const (
	ModeCheckin  Mode = "empenho"
	ModeCheckout Mode = "devolucao"
)

// FlowConfig parameterizes one wizard run. Built once when the draft is
// started, then carried with the draft.
type FlowConfig struct {
	Mode Mode `json:"mode"`

	// Floor for the odometer reading: the vehicle's last recorded value.
	OdometerFloor int64 `json:"odometerFloor"`

	PhotoPolicy config.PhotoFailurePolicy `json:"photoPolicy"`
}

// Mechanical condition flag values of step 2.
const (
	MechanicalOK      = "ok"
	MechanicalProblem = "com_problema"
)

// GeneralData is step 1.
type GeneralData struct {
	AgentName string   `json:"agentName"`
	Reason    string   `json:"reason"`
	Odometer  *int64   `json:"odometer"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Location  string   `json:"location"`
}

// ConditionData is step 2.
type ConditionData struct {
	FuelLevel   string `json:"fuelLevel"`
	OilLevel    string `json:"oilLevel"`
	Mechanical  string `json:"mechanical"`
	Observation string `json:"observation"`
}

// ItemCheck is one row of step 3, keyed by catalog item id in the draft.
type ItemCheck struct {
	Situation   string `json:"situation"`
	Observation string `json:"observation"`
}

// ConfiguredItem is what the validator needs to know about a vehicle's
// configured checklist items.
type ConfiguredItem struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	Obligation string `json:"obligation"`
}

// PhotoMeta is the declared metadata of one photo slot in step 4. The bytes
// arrive only at submission.
type PhotoMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Description string `json:"description,omitempty"`
}

// Draft is the accumulated state of one wizard run, persisted as JSON in
// Redis between requests.
type Draft struct {
	Flow FlowConfig `json:"flow"`

	VehicleID  string `json:"vehicleId"`
	ProtocolID string `json:"protocolId,omitempty"` // checkout only

	State State `json:"state"`

	General     GeneralData          `json:"general"`
	Condition   ConditionData        `json:"condition"`
	Items       map[string]ItemCheck `json:"items"`
	Photos      map[string]PhotoMeta `json:"photos"`
	Observation string               `json:"observation"` // step 5, optional

	UpdatedAt int64 `json:"updatedAt"`
}

// NewDraft starts a wizard run at step 1.
func NewDraft(flow FlowConfig, vehicleID, protocolID string) *Draft {
	return &Draft{
		Flow:       flow,
		VehicleID:  vehicleID,
		ProtocolID: protocolID,
		State:      StateStep1,
		Items:      map[string]ItemCheck{},
		Photos:     map[string]PhotoMeta{},
	}
}
