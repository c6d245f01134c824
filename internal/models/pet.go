package models

import (
	"time"
)

type Pet struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null;index"`
	Species        string    `json:"species" gorm:"not null"`
	Breed          string    `json:"breed"`
	Age            int       `json:"age"` // years
	MedicalNotes   string    `json:"medical_notes"`
	ProfilePicture string    `json:"profile_picture"` // stored filename, empty if none
}
