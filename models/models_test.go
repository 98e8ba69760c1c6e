package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSituation(t *testing.T) {
	assert.Equal(t, SituationPresent, NormalizeSituation("conforme"))
	assert.Equal(t, SituationPresent, NormalizeSituation("ok"))
	assert.Equal(t, SituationIncomplete, NormalizeSituation("parcial"))
	assert.Equal(t, SituationAbsent, NormalizeSituation("faltando"))
	assert.Equal(t, SituationAbsent, NormalizeSituation("nao_conforme"))

	// canonical values pass through
	assert.Equal(t, SituationPresent, NormalizeSituation(SituationPresent))
	// unknown values come back unchanged for the validator to reject
	assert.Equal(t, "quebrado", NormalizeSituation("quebrado"))
}

func TestValidSituation(t *testing.T) {
	assert.True(t, ValidSituation(SituationPresent))
	assert.True(t, ValidSituation("conforme"))
	assert.True(t, ValidSituation("parcial"))
	assert.False(t, ValidSituation("quebrado"))
	assert.False(t, ValidSituation(""))
}

func TestCustodyDuration(t *testing.T) {
	opened := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.EqualValues(t, 0, CustodyDuration(opened, opened))
	assert.EqualValues(t, 90, CustodyDuration(opened, opened.Add(90*time.Minute)))
	// sub-minute remainders truncate
	assert.EqualValues(t, 1, CustodyDuration(opened, opened.Add(119*time.Second)))
	// clock going backwards never produces a negative duration
	assert.EqualValues(t, 0, CustodyDuration(opened, opened.Add(-time.Hour)))
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RoleAdmin, RoleAgent))
	assert.True(t, RoleAtLeast(RoleAdmin, RoleAdmin))
	assert.True(t, RoleAtLeast(RoleManager, RoleAgent))
	assert.False(t, RoleAtLeast(RoleAgent, RoleManager))
	assert.False(t, RoleAtLeast(RoleManager, RoleAdmin))
	assert.False(t, RoleAtLeast("", RoleAgent))
	assert.False(t, RoleAtLeast(RoleAdmin, "superuser"))
}

func TestValidVehicleStatus(t *testing.T) {
	for _, s := range []string{
		VehicleAvailable, VehicleCheckedOut, VehicleReturned,
		VehicleMaintenance, VehicleInoperative, VehicleCrashed, VehicleDamaged,
	} {
		assert.True(t, ValidVehicleStatus(s), s)
	}
	assert.False(t, ValidVehicleStatus("emprestada"))
	assert.False(t, ValidVehicleStatus(""))
}
