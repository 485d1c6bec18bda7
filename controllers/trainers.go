package controllers

import (
	"errors"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TrainerController struct{}

// GetTrainers returns all trainer profiles
func (tc *TrainerController) GetTrainers(c *fiber.Ctx) error {
	var trainers []models.TrainerProfile
	query := database.DB.Order("name ASC")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&trainers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trainers",
		})
	}

	return c.JSON(fiber.Map{"trainers": trainers})
}

// GetTrainer returns a single trainer profile
func (tc *TrainerController) GetTrainer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer ID"})
	}

	var trainer models.TrainerProfile
	if err := database.DB.Preload("Account").First(&trainer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainer"})
	}

	return c.JSON(fiber.Map{"trainer": trainer})
}

// CreateTrainer creates a new trainer profile
func (tc *TrainerController) CreateTrainer(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	trainer := models.TrainerProfile{
		Name:     req.Name,
		Nickname: req.Nickname,
		IsActive: true,
	}

	if err := database.DB.Create(&trainer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trainer"})
	}

	middleware.LogActivity(c, "CREATE", "trainers", trainer.ID, fiber.Map{"name": trainer.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trainer": trainer})
}

// UpdateTrainer updates a trainer profile
func (tc *TrainerController) UpdateTrainer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer ID"})
	}

	var trainer models.TrainerProfile
	if err := database.DB.First(&trainer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainer"})
	}

	var req struct {
		Name     *string `json:"name"`
		Nickname *string `json:"nickname"`
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
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&trainer).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update trainer"})
	}

	middleware.LogActivity(c, "UPDATE", "trainers", trainer.ID, updates)

	return c.JSON(fiber.Map{"trainer": trainer})
}

// DeleteTrainer deactivates a trainer profile. Attendance history keeps
// referencing the row, so rows are never removed.
func (tc *TrainerController) DeleteTrainer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer ID"})
	}

	var trainer models.TrainerProfile
	if err := database.DB.First(&trainer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainer"})
	}

	if err := database.DB.Model(&trainer).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate trainer"})
	}

	middleware.LogActivity(c, "DELETE", "trainers", trainer.ID, fiber.Map{"name": trainer.Name})

	return c.JSON(fiber.Map{"message": "Trainer deactivated"})
}
