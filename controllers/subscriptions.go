package controllers

import (
	"errors"
	"fmt"
	"time"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubscriptionController struct{}

// CreateSubscriptionRequest represents a subscription purchase for a trainee
type CreateSubscriptionRequest struct {
	PlanID    uint   `json:"plan_id" validate:"required"`
	StartsAt  string `json:"starts_at" validate:"required"` // YYYY-MM-DD
	PaidCents *int64 `json:"paid_cents"`                    // defaults to the plan price
}

// applyPlanTerms snapshots the plan's shape onto a new subscription. A stored
// plan missing its type-specific fields is a data fault, not caller error.
func applyPlanTerms(subscription *models.Subscription, plan models.Plan, startsAt time.Time) error {
	switch plan.Type {
	case models.PlanTypePunch:
		if plan.Credits == nil || *plan.Credits <= 0 {
			return fmt.Errorf("punch plan %d has no credit count", plan.ID)
		}
		credits := *plan.Credits
		remaining := credits
		subscription.InitialCredits = &credits
		subscription.RemainingCredits = &remaining
	case models.PlanTypeTime:
		if plan.DurationDays == nil || *plan.DurationDays <= 0 {
			return fmt.Errorf("time plan %d has no duration", plan.ID)
		}
		endsAt := startsAt.AddDate(0, 0, *plan.DurationDays)
		subscription.EndsAt = &endsAt
	}
	return nil
}

// GetSubscriptionsForTrainee lists a trainee's subscriptions, newest first
func (sc *SubscriptionController) GetSubscriptionsForTrainee(c *fiber.Ctx) error {
	traineeID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainee ID"})
	}

	var trainee models.TraineeProfile
	if err := database.DB.First(&trainee, traineeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainee not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainee"})
	}

	var subscriptions []models.Subscription
	err = database.DB.
		Preload("Plan").
		Where("trainee_id = ?", traineeID).
		Order("starts_at DESC, id DESC").
		Find(&subscriptions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscriptions"})
	}

	return c.JSON(fiber.Map{"subscriptions": subscriptions})
}

// CreateSubscriptionForTrainee purchases a plan for a trainee. The plan's
// price, credits and duration are snapshotted onto the subscription so later
// plan edits never change what was bought.
func (sc *SubscriptionController) CreateSubscriptionForTrainee(c *fiber.Ctx) error {
	traineeID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainee ID"})
	}

	var req CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startsAt, err := time.Parse("2006-01-02", req.StartsAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be a YYYY-MM-DD date"})
	}

	var trainee models.TraineeProfile
	if err := database.DB.First(&trainee, traineeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainee not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch trainee"})
	}

	var plan models.Plan
	if err := database.DB.First(&plan, req.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plan"})
	}
	if !plan.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Plan is not active"})
	}

	paidCents := plan.PriceCents
	if req.PaidCents != nil {
		if *req.PaidCents < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paid_cents cannot be negative"})
		}
		paidCents = *req.PaidCents
	}

	subscription := models.Subscription{
		TraineeID: uint(traineeID),
		PlanID:    plan.ID,
		Type:      plan.Type,
		Status:    models.SubscriptionActive,
		PaidCents: paidCents,
		StartsAt:  startsAt,
	}

	if err := applyPlanTerms(&subscription, plan, startsAt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := database.DB.Create(&subscription).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subscription"})
	}

	database.DB.Preload("Plan").First(&subscription, subscription.ID)

	middleware.LogActivity(c, "CREATE", "subscriptions", subscription.ID, fiber.Map{
		"trainee_id": traineeID,
		"plan_id":    plan.ID,
		"type":       plan.Type,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": subscription})
}

// CancelSubscription flips a subscription to CANCELLED. Historical attendance
// stamped with it keeps its pricing.
func (sc *SubscriptionController) CancelSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
	}

	var subscription models.Subscription
	if err := database.DB.First(&subscription, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}

	if subscription.Status != models.SubscriptionActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Only active subscriptions can be cancelled"})
	}

	if err := database.DB.Model(&subscription).Update("status", models.SubscriptionCancelled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel subscription"})
	}

	middleware.LogActivity(c, "UPDATE", "subscriptions", subscription.ID, fiber.Map{"status": models.SubscriptionCancelled})

	return c.JSON(fiber.Map{"subscription": subscription})
}

// DeleteSubscription removes a subscription that has never been consumed.
// Once attendance references it, deletion is refused to protect settlement
// history.
func (sc *SubscriptionController) DeleteSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
	}

	var subscription models.Subscription
	if err := database.DB.First(&subscription, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}

	var attendanceCount int64
	if err := database.DB.Model(&models.AttendanceRecord{}).
		Where("subscription_id = ?", subscription.ID).
		Count(&attendanceCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check attendance"})
	}
	if attendanceCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Subscription has attendance history and cannot be deleted"})
	}

	if err := database.DB.Unscoped().Delete(&subscription).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subscription"})
	}

	middleware.LogActivity(c, "DELETE", "subscriptions", subscription.ID, nil)

	return c.JSON(fiber.Map{"deleted": true})
}
