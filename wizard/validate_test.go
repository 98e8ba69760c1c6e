package wizard

import (
	"testing"

	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func validGeneral() GeneralData {
	return GeneralData{
		AgentName: "Silva",
		Reason:    "patrulhamento",
		Odometer:  int64p(52300),
		Location:  "Base Centro",
	}
}

func validCondition() ConditionData {
	return ConditionData{
		FuelLevel:  models.Fuel34,
		OilLevel:   models.OilMedium,
		Mechanical: MechanicalOK,
	}
}

func TestValidateGeneralOdometerFloor(t *testing.T) {
	g := validGeneral()
	g.Odometer = int64p(51999)

	v := ValidateGeneral(g, 52000)
	require.Len(t, v, 1)
	assert.Equal(t, "hodômetro não pode ser menor que 52000 km", v[0])

	g.Odometer = int64p(52000)
	assert.Empty(t, ValidateGeneral(g, 52000))
}

func TestValidateGeneralRequiredFields(t *testing.T) {
	v := ValidateGeneral(GeneralData{}, 0)
	assert.Len(t, v, 4)
}

func TestValidateConditionMechanicalProblemNeedsObservation(t *testing.T) {
	c := validCondition()
	c.Mechanical = MechanicalProblem

	v := ValidateCondition(c)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "observação é obrigatória")

	c.Observation = "barulho no freio dianteiro"
	assert.Empty(t, ValidateCondition(c))
}

func TestValidateConditionRejectsBadLevels(t *testing.T) {
	c := validCondition()
	c.FuelLevel = "cheio"
	c.OilLevel = "normal"

	v := ValidateCondition(c)
	assert.Len(t, v, 2)
}

func TestValidateItemsSkipsUnconfiguredVehicle(t *testing.T) {
	assert.Empty(t, ValidateItems(nil, map[string]ItemCheck{}))
}

func TestValidateItems(t *testing.T) {
	configured := []ConfiguredItem{
		{ItemID: "i1", Name: "Extintor", Obligation: models.ObligationMandatory},
		{ItemID: "i2", Name: "Macaco", Obligation: models.ObligationMandatory},
		{ItemID: "i3", Name: "Cone", Obligation: models.ObligationOptional},
	}

	checks := map[string]ItemCheck{
		"i1": {Situation: models.SituationPresent},
		"i2": {Situation: models.SituationAbsent}, // missing observation
	}
	v := ValidateItems(configured, checks)
	require.Len(t, v, 2)
	assert.Contains(t, v[0], "Macaco")
	assert.Contains(t, v[1], "Cone")

	checks["i2"] = ItemCheck{Situation: models.SituationAbsent, Observation: "não encontrado no bagageiro"}
	checks["i3"] = ItemCheck{Situation: "conforme"} // legacy synonym of presente
	assert.Empty(t, ValidateItems(configured, checks))
}

func TestValidateItemsRejectsUnknownSituation(t *testing.T) {
	configured := []ConfiguredItem{{ItemID: "i1", Name: "Extintor"}}
	v := ValidateItems(configured, map[string]ItemCheck{"i1": {Situation: "quebrado"}})
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "situação inválida")
}

func allPhotos() map[string]PhotoMeta {
	m := map[string]PhotoMeta{}
	for _, pt := range models.RequiredPhotoTypes {
		m[pt] = PhotoMeta{Filename: pt + ".jpg", ContentType: "image/jpeg", Size: 1024}
	}
	return m
}

func TestValidatePhotos(t *testing.T) {
	assert.Empty(t, ValidatePhotos(allPhotos()))

	missing := allPhotos()
	delete(missing, models.PhotoRear)
	v := ValidatePhotos(missing)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], models.PhotoRear)

	bad := allPhotos()
	bad[models.PhotoFront] = PhotoMeta{Filename: "f.pdf", ContentType: "application/pdf", Size: 1024}
	v = ValidatePhotos(bad)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "precisa ser uma imagem")

	big := allPhotos()
	big[models.PhotoLeft] = PhotoMeta{Filename: "l.jpg", ContentType: "image/jpeg", Size: MaxPhotoSize + 1}
	v = ValidatePhotos(big)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "10 MB")
}

func TestValidatePhotosRejectsUnknownSlot(t *testing.T) {
	photos := allPhotos()
	photos["selfie"] = PhotoMeta{Filename: "s.zip", ContentType: "application/zip", Size: 50 << 20}

	v := ValidatePhotos(photos)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "selfie")
	assert.Contains(t, v[0], "não é reconhecido")
}

func TestValidatePhotosChecksOptionalSlot(t *testing.T) {
	photos := allPhotos()
	photos[models.PhotoOther] = PhotoMeta{Filename: "detalhe.jpg", ContentType: "image/jpeg", Size: 2048}
	assert.Empty(t, ValidatePhotos(photos))

	photos[models.PhotoOther] = PhotoMeta{Filename: "detalhe.zip", ContentType: "application/zip", Size: MaxPhotoSize + 1}
	v := ValidatePhotos(photos)
	require.Len(t, v, 2)
	assert.Contains(t, v[0], "precisa ser uma imagem")
	assert.Contains(t, v[1], "10 MB")
}

func TestValidateAllAggregatesEveryStep(t *testing.T) {
	d := NewDraft(FlowConfig{Mode: ModeCheckin, OdometerFloor: 100, PhotoPolicy: config.PhotoLenient}, "v1", "")
	d.General = validGeneral()
	d.Condition = validCondition()
	d.Photos = allPhotos()

	configured := []ConfiguredItem{{ItemID: "i1", Name: "Extintor"}}
	v := ValidateAll(d, configured)
	require.Len(t, v, 1) // only the missing item situation

	d.Items["i1"] = ItemCheck{Situation: models.SituationPresent}
	assert.Empty(t, ValidateAll(d, configured))
}
