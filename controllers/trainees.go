package controllers

import (
	"errors"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TraineeController struct{}

// GetTrainees returns trainee profiles, optionally filtered by a name search
func (tc *TraineeController) GetTrainees(c *fiber.Ctx) error {
	var trainees []models.TraineeProfile
	query := database.DB.Order("name ASC")

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR nickname LIKE ? OR phone LIKE ?", like, like, like)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&trainees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trainees",
		})
	}

	return c.JSON(fiber.Map{"trainees": trainees})
}

// GetTrainee returns a single trainee profile with its subscriptions
func (tc *TraineeController) GetTrainee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainee ID"})
	}

	var trainee models.TraineeProfile
	err = database.DB.
		Preload("Subscriptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("starts_at DESC")
		}).
		Preload("Subscriptions.Plan").
		First(&trainee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainee not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainee"})
	}

	return c.JSON(fiber.Map{"trainee": trainee})
}

// CreateTrainee creates a new trainee profile
func (tc *TraineeController) CreateTrainee(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Nickname string `json:"nickname"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	trainee := models.TraineeProfile{
		Name:     req.Name,
		Nickname: req.Nickname,
		Phone:    req.Phone,
		IsActive: true,
	}

	if err := database.DB.Create(&trainee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trainee"})
	}

	middleware.LogActivity(c, "CREATE", "trainees", trainee.ID, fiber.Map{"name": trainee.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trainee": trainee})
}

// UpdateTrainee updates a trainee profile
func (tc *TraineeController) UpdateTrainee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainee ID"})
	}

	var trainee models.TraineeProfile
	if err := database.DB.First(&trainee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainee not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainee"})
	}

	var req struct {
		Name     *string `json:"name"`
		Nickname *string `json:"nickname"`
		Phone    *string `json:"phone"`
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
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&trainee).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update trainee"})
	}

	middleware.LogActivity(c, "UPDATE", "trainees", trainee.ID, updates)

	return c.JSON(fiber.Map{"trainee": trainee})
}

// DeleteTrainee deactivates a trainee profile
func (tc *TraineeController) DeleteTrainee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainee ID"})
	}

	var trainee models.TraineeProfile
	if err := database.DB.First(&trainee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainee not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainee"})
	}

	if err := database.DB.Model(&trainee).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate trainee"})
	}

	middleware.LogActivity(c, "DELETE", "trainees", trainee.ID, fiber.Map{"name": trainee.Name})

	return c.JSON(fiber.Map{"message": "Trainee deactivated"})
}
