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

type PlanController struct{}

// CreatePlanRequest represents the plan creation body
type CreatePlanRequest struct {
	Type         string `json:"type" validate:"required"`
	Title        string `json:"title" validate:"required"`
	PriceCents   int64  `json:"price_cents" validate:"required"`
	Credits      *int   `json:"credits"`
	DurationDays *int   `json:"duration_days"`
}

// GetPlans returns all plans
func (pc *PlanController) GetPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	query := database.DB.Order("id ASC")

	if planType := c.Query("type"); planType != "" {
		query = query.Where("type = ?", planType)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&plans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plans"})
	}

	return c.JSON(fiber.Map{"plans": plans})
}

// GetPlan returns a single plan
func (pc *PlanController) GetPlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan ID"})
	}

	var plan models.Plan
	if err := database.DB.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plan"})
	}

	return c.JSON(fiber.Map{"plan": plan})
}

// CreatePlan creates a new plan. Punch plans need a positive credit count,
// time plans a positive duration.
func (pc *PlanController) CreatePlan(c *fiber.Ctx) error {
	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !utils.IsValidPlanType(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan type"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if req.PriceCents <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price must be positive"})
	}
	if req.Type == models.PlanTypePunch && (req.Credits == nil || *req.Credits <= 0) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Punch plans require a positive credit count"})
	}
	if req.Type == models.PlanTypeTime && (req.DurationDays == nil || *req.DurationDays <= 0) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Time plans require a positive duration in days"})
	}

	plan := models.Plan{
		Type:       req.Type,
		Title:      req.Title,
		PriceCents: req.PriceCents,
		IsActive:   true,
	}
	if req.Type == models.PlanTypePunch {
		plan.Credits = req.Credits
	} else {
		plan.DurationDays = req.DurationDays
	}

	if err := database.DB.Create(&plan).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}

	middleware.LogActivity(c, "CREATE", "plans", plan.ID, fiber.Map{"title": plan.Title, "type": plan.Type})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// UpdatePlan updates plan metadata. Type, credits and duration are fixed
// after creation; subscriptions snapshot pricing, so price edits only affect
// future purchases.
func (pc *PlanController) UpdatePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan ID"})
	}

	var plan models.Plan
	if err := database.DB.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plan"})
	}

	var req struct {
		Title      *string `json:"title"`
		PriceCents *int64  `json:"price_cents"`
		IsActive   *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title cannot be empty"})
		}
		updates["title"] = *req.Title
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price must be positive"})
		}
		updates["price_cents"] = *req.PriceCents
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&plan).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update plan"})
	}

	middleware.LogActivity(c, "UPDATE", "plans", plan.ID, updates)

	return c.JSON(fiber.Map{"plan": plan})
}
