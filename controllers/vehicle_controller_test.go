package controllers

import (
	"testing"

	"Gin_postgres_redis_fleet_custody/models"

	"github.com/stretchr/testify/assert"
)

func TestVehicleStatusDetail(t *testing.T) {
	assert.Equal(t, "status disponivel -> manutencao",
		vehicleStatusDetail(models.VehicleAvailable, models.VehicleMaintenance))
	assert.Equal(t, "status empenhada -> disponivel",
		vehicleStatusDetail(models.VehicleCheckedOut, models.VehicleAvailable))
}
