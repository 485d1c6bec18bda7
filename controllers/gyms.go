package controllers

import (
	"errors"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GymLocationController struct{}

// GetGymLocations returns all gym locations
func (gc *GymLocationController) GetGymLocations(c *fiber.Ctx) error {
	var locations []models.GymLocation
	query := database.DB.Order("name ASC")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&locations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym locations"})
	}

	return c.JSON(fiber.Map{"gym_locations": locations})
}

// GetGymLocation returns a single gym location
func (gc *GymLocationController) GetGymLocation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym location ID"})
	}

	var location models.GymLocation
	if err := database.DB.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym location not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym location"})
	}

	return c.JSON(fiber.Map{"gym_location": location})
}

// CreateGymLocation creates a new gym location
func (gc *GymLocationController) CreateGymLocation(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	location := models.GymLocation{
		Name:     req.Name,
		Address:  req.Address,
		Notes:    req.Notes,
		IsActive: true,
	}

	if err := database.DB.Create(&location).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create gym location"})
	}

	middleware.LogActivity(c, "CREATE", "gym-locations", location.ID, fiber.Map{"name": location.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"gym_location": location})
}

// UpdateGymLocation updates a gym location
func (gc *GymLocationController) UpdateGymLocation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym location ID"})
	}

	var location models.GymLocation
	if err := database.DB.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym location not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym location"})
	}

	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		Notes    *string `json:"notes"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name cannot be empty"})
		}
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&location).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update gym location"})
	}

	middleware.LogActivity(c, "UPDATE", "gym-locations", location.ID, updates)

	return c.JSON(fiber.Map{"gym_location": location})
}

// DeleteGymLocation deactivates a gym location
func (gc *GymLocationController) DeleteGymLocation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym location ID"})
	}

	var location models.GymLocation
	if err := database.DB.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym location not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym location"})
	}

	if err := database.DB.Model(&location).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate gym location"})
	}

	middleware.LogActivity(c, "DELETE", "gym-locations", location.ID, fiber.Map{"name": location.Name})

	return c.JSON(fiber.Map{"message": "Gym location deactivated"})
}
