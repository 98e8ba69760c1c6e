package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{}, &models.Credential{}, &models.Invite{},
		&models.Vehicle{}, &models.Item{}, &models.VehicleItemConfig{},
		&models.Protocol{}, &models.Devolucao{},
		&models.Checklist{}, &models.ChecklistItem{}, &models.Photo{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// Hard guard: at most one em_andamento protocol per vehicle. The
	// check-in listing filter alone is a read-then-act race.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_vehicle
	  ON %s (vehicle_id)
	  WHERE status = 'em_andamento';
	`, models.ProtocolTable, models.ProtocolTable)).Error; err != nil {
		return err
	}

	// Faster "current protocol of vehicle X" lookups.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_vehicle_createdat_desc
	  ON %s (vehicle_id, created_at DESC)
	  WHERE status = 'em_andamento';
	`, models.ProtocolTable, models.ProtocolTable)).Error; err != nil {
		return err
	}

	// Protocol numbers come from the database, never from the app.
	if err := db.Exec(`CREATE SEQUENCE IF NOT EXISTS frota_protocolo_seq START 1;`).Error; err != nil {
		return err
	}

	return nil
}
