// wizard/validate.go
package wizard

import (
	"Gin_postgres_redis_fleet_custody/models"
	"fmt"
	"sort"
	"strings"
)

// MaxPhotoSize caps each evidence photo at 10 MB.
const MaxPhotoSize = 10 << 20

// Validators are stateless predicates, one per step. Each returns the list of
// human-readable violations; an empty list means the step gate opens.

func ValidateGeneral(g GeneralData, floor int64) []string {
	var v []string
	if strings.TrimSpace(g.AgentName) == "" {
		v = append(v, "nome do agente é obrigatório")
	}
	if strings.TrimSpace(g.Reason) == "" {
		v = append(v, "motivo é obrigatório")
	}
	if g.Odometer == nil {
		v = append(v, "hodômetro é obrigatório")
	} else if *g.Odometer < floor {
		v = append(v, fmt.Sprintf("hodômetro não pode ser menor que %d km", floor))
	}
	if strings.TrimSpace(g.Location) == "" {
		v = append(v, "local é obrigatório")
	}
	return v
}

func validFuel(s string) bool {
	switch s {
	case models.Fuel14, models.Fuel24, models.Fuel34, models.Fuel44:
		return true
	}
	return false
}

func validOil(s string) bool {
	switch s {
	case models.OilHigh, models.OilMedium, models.OilLow:
		return true
	}
	return false
}

func ValidateCondition(c ConditionData) []string {
	var v []string
	if !validFuel(c.FuelLevel) {
		v = append(v, "nível de combustível inválido")
	}
	if !validOil(c.OilLevel) {
		v = append(v, "nível de óleo inválido")
	}
	switch c.Mechanical {
	case MechanicalOK:
	case MechanicalProblem:
		if strings.TrimSpace(c.Observation) == "" {
			v = append(v, "observação é obrigatória quando a condição mecânica não está ok")
		}
	default:
		v = append(v, "condição mecânica é obrigatória")
	}
	return v
}

// ValidateItems is only enforced when the vehicle has configured items: every
// configured item needs a situation, and anything not presente needs an
// observation.
func ValidateItems(configured []ConfiguredItem, checks map[string]ItemCheck) []string {
	if len(configured) == 0 {
		return nil
	}
	var v []string
	for _, ci := range configured {
		chk, ok := checks[ci.ItemID]
		if !ok || chk.Situation == "" {
			v = append(v, fmt.Sprintf("item %q sem situação informada", ci.Name))
			continue
		}
		situation := models.NormalizeSituation(chk.Situation)
		if !models.ValidSituation(situation) {
			v = append(v, fmt.Sprintf("situação inválida para o item %q", ci.Name))
			continue
		}
		if situation != models.SituationPresent && strings.TrimSpace(chk.Observation) == "" {
			v = append(v, fmt.Sprintf("observação é obrigatória para o item %q", ci.Name))
		}
	}
	return v
}

func validPhotoType(t string) bool {
	for _, pt := range models.RequiredPhotoTypes {
		if t == pt {
			return true
		}
	}
	return t == models.PhotoOther
}

// ValidatePhotos requires the four mandatory slots and checks every declared
// slot, including extras: the slot name must belong to the photo-type set and
// each entry must be an image under the size cap.
func ValidatePhotos(photos map[string]PhotoMeta) []string {
	var v []string
	for _, pt := range models.RequiredPhotoTypes {
		if _, ok := photos[pt]; !ok {
			v = append(v, fmt.Sprintf("foto %q é obrigatória", pt))
		}
	}

	slots := make([]string, 0, len(photos))
	for slot := range photos {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		if !validPhotoType(slot) {
			v = append(v, fmt.Sprintf("tipo de foto %q não é reconhecido", slot))
			continue
		}
		ph := photos[slot]
		if !strings.HasPrefix(ph.ContentType, "image/") {
			v = append(v, fmt.Sprintf("foto %q precisa ser uma imagem", slot))
		}
		if ph.Size > MaxPhotoSize {
			v = append(v, fmt.Sprintf("foto %q excede o limite de 10 MB", slot))
		}
	}
	return v
}

// ValidateStep runs the validator that gates the given state. Step 5 carries
// no fields of its own.
func ValidateStep(d *Draft, state State, configured []ConfiguredItem) []string {
	switch state {
	case StateStep1:
		return ValidateGeneral(d.General, d.Flow.OdometerFloor)
	case StateStep2:
		return ValidateCondition(d.Condition)
	case StateStep3:
		return ValidateItems(configured, d.Items)
	case StateStep4:
		return ValidatePhotos(d.Photos)
	case StateStep5:
		return nil
	}
	return []string{fmt.Sprintf("etapa desconhecida: %s", state)}
}

// ValidateAll re-runs every step gate; submission is blocked by any upstream
// failure.
func ValidateAll(d *Draft, configured []ConfiguredItem) []string {
	var v []string
	for _, st := range []State{StateStep1, StateStep2, StateStep3, StateStep4, StateStep5} {
		v = append(v, ValidateStep(d, st, configured)...)
	}
	return v
}
