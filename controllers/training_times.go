package controllers

import (
	"errors"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	"gymdesk_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TrainingTimeController struct{}

// GetTrainingTimes returns all reusable training time slots
func (tc *TrainingTimeController) GetTrainingTimes(c *fiber.Ctx) error {
	var times []models.TrainingTime
	if err := database.DB.Order("start_time ASC").Find(&times).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch training times"})
	}

	return c.JSON(fiber.Map{"training_times": times})
}

// CreateTrainingTime creates a new slot
func (tc *TrainingTimeController) CreateTrainingTime(c *fiber.Ctx) error {
	var req struct {
		StartTime string `json:"start_time" validate:"required"`
		EndTime   string `json:"end_time" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !utils.IsValidTimeOfDay(req.StartTime) || !utils.IsValidTimeOfDay(req.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Times must be in HH:MM format"})
	}
	if req.EndTime <= req.StartTime {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End time must be after start time"})
	}

	slot := models.TrainingTime{StartTime: req.StartTime, EndTime: req.EndTime}
	if err := database.DB.Create(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create training time"})
	}

	middleware.LogActivity(c, "CREATE", "training-times", slot.ID, fiber.Map{
		"start_time": slot.StartTime,
		"end_time":   slot.EndTime,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"training_time": slot})
}

// DeleteTrainingTime removes a slot. Slots are only UI presets, so a hard
// delete is safe.
func (tc *TrainingTimeController) DeleteTrainingTime(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid training time ID"})
	}

	var slot models.TrainingTime
	if err := database.DB.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Training time not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch training time"})
	}

	if err := database.DB.Unscoped().Delete(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete training time"})
	}

	middleware.LogActivity(c, "DELETE", "training-times", slot.ID, nil)

	return c.JSON(fiber.Map{"deleted": true})
}
