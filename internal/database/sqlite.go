package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vettrack/pet-health/backend/internal/models"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return err
	}

	log.Println("[DATABASE] Connected successfully")

	// Auto-migrate the schema
	err = DB.AutoMigrate(&models.Pet{}, &models.HealthRecord{}, &models.ImageAnalysisCache{})
	if err != nil {
		return err
	}

	log.Println("[DATABASE] Migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
