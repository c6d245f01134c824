package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vettrack/pet-health/backend/internal/database"
	"github.com/vettrack/pet-health/backend/internal/models"
	"github.com/vettrack/pet-health/backend/internal/services"
)

type PetHandler struct {
	storage *services.ImageStorageService
}

func NewPetHandler(storage *services.ImageStorageService) *PetHandler {
	return &PetHandler{storage: storage}
}

type petRequest struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Breed        string `json:"breed"`
	Age          int    `json:"age"`
	MedicalNotes string `json:"medical_notes"`
}

// CreatePet registers a new pet. Accepts plain JSON, or multipart form data
// with an optional profile_picture file.
// POST /api/pets
func (h *PetHandler) CreatePet(c *gin.Context) {
	var pet models.Pet

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		pet.Name = c.PostForm("name")
		pet.Species = c.PostForm("species")
		pet.Breed = c.PostForm("breed")
		pet.MedicalNotes = c.PostForm("medical_notes")
		if age := c.PostForm("age"); age != "" {
			if parsed, err := strconv.Atoi(age); err == nil {
				pet.Age = parsed
			}
		}

		if file, err := c.FormFile("profile_picture"); err == nil {
			filename, err := h.savePetPicture(file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pet.ProfilePicture = filename
		}
	} else {
		var req petRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		pet = models.Pet{
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			Age:          req.Age,
			MedicalNotes: req.MedicalNotes,
		}
	}

	if strings.TrimSpace(pet.Name) == "" || strings.TrimSpace(pet.Species) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and species are required"})
		return
	}

	if err := database.GetDB().Create(&pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pet"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"pet":     pet,
	})
}

// ListPets returns all registered pets.
// GET /api/pets
func (h *PetHandler) ListPets(c *gin.Context) {
	var pets []models.Pet
	if err := database.GetDB().Order("name").Find(&pets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pets":    pets,
	})
}

// GetPet returns one pet by ID.
// GET /api/pets/:id
func (h *PetHandler) GetPet(c *gin.Context) {
	pet, ok := loadPet(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pet":     pet,
	})
}

// UpdatePet applies a partial update to a pet's profile.
// PUT /api/pets/:id
func (h *PetHandler) UpdatePet(c *gin.Context) {
	pet, ok := loadPet(c)
	if !ok {
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Species      *string `json:"species"`
		Breed        *string `json:"breed"`
		Age          *int    `json:"age"`
		MedicalNotes *string `json:"medical_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Species != nil {
		if strings.TrimSpace(*req.Species) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Species cannot be empty"})
			return
		}
		updates["species"] = *req.Species
	}
	if req.Breed != nil {
		updates["breed"] = *req.Breed
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.MedicalNotes != nil {
		updates["medical_notes"] = *req.MedicalNotes
	}

	if len(updates) > 0 {
		db := database.GetDB()
		if err := db.Model(pet).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pet"})
			return
		}
		if err := db.First(pet, pet.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload pet"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pet":     pet,
	})
}

// DeletePet removes a pet together with its health records, cached analyses,
// and profile picture.
// DELETE /api/pets/:id
func (h *PetHandler) DeletePet(c *gin.Context) {
	pet, ok := loadPet(c)
	if !ok {
		return
	}

	db := database.GetDB()
	db.Where("pet_id = ?", pet.ID).Delete(&models.HealthRecord{})
	db.Where("pet_id = ?", pet.ID).Delete(&models.ImageAnalysisCache{})
	if err := db.Delete(pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pet"})
		return
	}

	if pet.ProfilePicture != "" {
		_ = h.storage.DeleteImage(pet.ProfilePicture)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Pet deleted",
	})
}

// savePetPicture validates and stores an uploaded profile picture.
func (h *PetHandler) savePetPicture(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	mimeType, err := services.ValidateImage(data)
	if err != nil {
		return "", err
	}

	return h.storage.SaveImage(data, file.Filename, mimeType)
}

// loadPet resolves the :id path parameter to a pet, writing the error
// response itself on failure.
func loadPet(c *gin.Context) (*models.Pet, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pet ID"})
		return nil, false
	}

	var pet models.Pet
	if err := database.GetDB().First(&pet, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pet not found"})
		return nil, false
	}
	return &pet, true
}
