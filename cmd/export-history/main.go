// export-history dumps pets and their health records from the application
// database into JSON files for backup or transfer to another system.
//
// Usage: go run main.go -db=<path> -output=<dir> [-pet=<pet-id>]
//
// This tool creates:
//   - <output>/pets.json - List of all pets with record counts
//   - <output>/history/<pet-id>-<name>.json - Health records for each pet
//
// Stored diagnosis and cause lists are decoded into plain JSON arrays so the
// export is readable without knowing the column encoding.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vettrack/pet-health/backend/internal/models"
)

type ExportPet struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
	Age     int    `json:"age,omitempty"`
	Records int    `json:"records"`
}

type ExportRecord struct {
	ID             uint      `json:"id"`
	Date           time.Time `json:"date"`
	Symptoms       string    `json:"symptoms"`
	Diagnosis      []string  `json:"diagnosis"`
	Recommendation string    `json:"recommendation"`
	UrgencyLevel   string    `json:"urgency_level"`
	PossibleCauses []string  `json:"possible_causes"`
	CreatedAt      time.Time `json:"created_at"`
}

// fileSlug makes a pet name safe for use in a filename.
func fileSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, "/", "-")
	if slug == "" {
		slug = "pet"
	}
	return slug
}

func convertRecord(r models.HealthRecord) ExportRecord {
	return ExportRecord{
		ID:             r.ID,
		Date:           r.Date,
		Symptoms:       r.Symptoms,
		Diagnosis:      r.DiagnosisList(),
		Recommendation: r.Recommendation,
		UrgencyLevel:   r.UrgencyLevel,
		PossibleCauses: r.PossibleCausesList(),
		CreatedAt:      r.CreatedAt,
	}
}

func main() {
	dbPath := flag.String("db", "", "Database path (or set DATABASE_PATH env var)")
	outputDir := flag.String("output", "", "Output directory (required)")
	petID := flag.Uint("pet", 0, "Export only this pet (optional)")
	flag.Parse()

	godotenv.Load()

	if *dbPath == "" {
		*dbPath = os.Getenv("DATABASE_PATH")
	}
	if *dbPath == "" {
		*dbPath = "./data/pethealth.db"
	}

	if *outputDir == "" {
		fmt.Println("Usage: export-history -db=<path> -output=<dir> [-pet=<pet-id>]")
		fmt.Println("")
		fmt.Println("Exports pets and health records to JSON files.")
		fmt.Println("")
		fmt.Println("Options:")
		fmt.Println("  -db      Database path (or set DATABASE_PATH env var)")
		fmt.Println("  -output  Output directory for JSON files")
		fmt.Println("  -pet     Export only a specific pet ID (optional)")
		os.Exit(1)
	}

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", *dbPath, err)
	}

	historyDir := filepath.Join(*outputDir, "history")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	query := db.Order("id")
	if *petID > 0 {
		query = query.Where("id = ?", *petID)
	}

	var pets []models.Pet
	if err := query.Find(&pets).Error; err != nil {
		log.Fatalf("Failed to load pets: %v", err)
	}
	if len(pets) == 0 {
		log.Fatalf("No pets found in %s", *dbPath)
	}
	log.Printf("Found %d pets", len(pets))

	exportPets := make([]ExportPet, 0, len(pets))
	for _, p := range pets {
		exportPets = append(exportPets, ExportPet{
			ID:      p.ID,
			Name:    p.Name,
			Species: p.Species,
			Breed:   p.Breed,
			Age:     p.Age,
		})
	}

	petsFile := filepath.Join(*outputDir, "pets.json")

	for i, pet := range pets {
		log.Printf("[%d/%d] Exporting history for %s...", i+1, len(pets), pet.Name)

		var records []models.HealthRecord
		if err := db.Where("pet_id = ?", pet.ID).
			Order("date DESC, id DESC").Find(&records).Error; err != nil {
			log.Printf("Warning: failed to load records for %s: %v", pet.Name, err)
			continue
		}

		exportPets[i].Records = len(records)

		if len(records) == 0 {
			log.Printf("  No records, skipping")
			continue
		}

		exportRecords := make([]ExportRecord, 0, len(records))
		for _, r := range records {
			exportRecords = append(exportRecords, convertRecord(r))
		}

		recordsJSON, err := json.MarshalIndent(exportRecords, "", "  ")
		if err != nil {
			log.Printf("Warning: failed to marshal records for %s: %v", pet.Name, err)
			continue
		}

		recordFile := filepath.Join(historyDir, fmt.Sprintf("%d-%s.json", pet.ID, fileSlug(pet.Name)))
		if err := os.WriteFile(recordFile, recordsJSON, 0644); err != nil {
			log.Printf("Warning: failed to write %s: %v", recordFile, err)
			continue
		}

		log.Printf("  Wrote %s (%d records)", recordFile, len(exportRecords))
	}

	petsJSON, err := json.MarshalIndent(exportPets, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal pets: %v", err)
	}
	if err := os.WriteFile(petsFile, petsJSON, 0644); err != nil {
		log.Fatalf("Failed to write pets file: %v", err)
	}
	log.Printf("Wrote %s (%d pets)", petsFile, len(exportPets))

	log.Println("Done!")
}
