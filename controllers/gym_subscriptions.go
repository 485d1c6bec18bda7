package controllers

import (
	"errors"
	"strings"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GymSubscriptionController struct{}

// GetGymSubscriptions returns all partner gym-access programs
func (gc *GymSubscriptionController) GetGymSubscriptions(c *fiber.Ctx) error {
	var programs []models.GymSubscription
	query := database.DB.Order("name ASC")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&programs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym subscriptions"})
	}

	return c.JSON(fiber.Map{"gym_subscriptions": programs})
}

// CreateGymSubscription creates a partner program entry
func (gc *GymSubscriptionController) CreateGymSubscription(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	var existing models.GymSubscription
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Gym subscription already exists"})
	}

	program := models.GymSubscription{Name: req.Name, IsActive: true}
	if err := database.DB.Create(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create gym subscription"})
	}

	middleware.LogActivity(c, "CREATE", "gym-subscriptions", program.ID, fiber.Map{"name": program.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"gym_subscription": program})
}

// UpdateGymSubscription updates a partner program entry
func (gc *GymSubscriptionController) UpdateGymSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym subscription ID"})
	}

	var program models.GymSubscription
	if err := database.DB.First(&program, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym subscription"})
	}

	var req struct {
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name cannot be empty"})
		}
		updates["name"] = name
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&program).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update gym subscription"})
	}

	middleware.LogActivity(c, "UPDATE", "gym-subscriptions", program.ID, updates)

	return c.JSON(fiber.Map{"gym_subscription": program})
}

// DeleteGymSubscription deactivates a partner program entry
func (gc *GymSubscriptionController) DeleteGymSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym subscription ID"})
	}

	var program models.GymSubscription
	if err := database.DB.First(&program, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym subscription"})
	}

	if err := database.DB.Model(&program).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate gym subscription"})
	}

	middleware.LogActivity(c, "DELETE", "gym-subscriptions", program.ID, fiber.Map{"name": program.Name})

	return c.JSON(fiber.Map{"message": "Gym subscription deactivated"})
}
