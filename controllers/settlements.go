package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	"gymdesk_go/services"
	notificationsvc "gymdesk_go/services/notifications"

	"github.com/gofiber/fiber/v2"
)

type SettlementController struct{}

// notifyAdmins pushes a settlement lifecycle event to every active admin,
// which also fans out over the WebSocket hub
func notifyAdmins(title, message string) {
	var admins []models.Account
	if err := database.DB.Where("role = ? AND status = ?", models.RoleAdmin, models.AccountActive).
		Find(&admins).Error; err != nil {
		return
	}
	ids := make([]uint, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.ID)
	}
	if len(ids) == 0 {
		return
	}
	_ = notificationsvc.NewService().EnqueueOrCreate(ids, notificationsvc.Queued(title, message, "info"))
}

// GenerateSettlementRequest represents the settlement generation body
type GenerateSettlementRequest struct {
	PeriodStart string `json:"period_start" validate:"required"` // YYYY-MM-DD
	PeriodEnd   string `json:"period_end" validate:"required"`   // YYYY-MM-DD, inclusive
	Notes       string `json:"notes"`
}

// GetSettlements lists settlements, newest first
func (sc *SettlementController) GetSettlements(c *fiber.Ctx) error {
	settlements, err := services.NewSettlementService().List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch settlements"})
	}

	return c.JSON(fiber.Map{"settlements": settlements})
}

// GetSettlement returns one settlement with its per-trainer lines
func (sc *SettlementController) GetSettlement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	settlement, lines, err := services.NewSettlementService().Get(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSettlementNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch settlement"})
	}

	return c.JSON(fiber.Map{"settlement": settlement, "lines": lines})
}

// GenerateSettlement creates a DRAFT settlement for a period and prices every
// attendance record inside it
func (sc *SettlementController) GenerateSettlement(c *fiber.Ctx) error {
	var req GenerateSettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	svc := services.NewSettlementService()
	start, end, err := services.ParsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	settlement, lines, err := svc.Generate(c.Context(), start, end, req.Notes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate settlement"})
	}

	middleware.LogActivity(c, "CREATE", "settlements", settlement.ID, fiber.Map{
		"period_start": req.PeriodStart,
		"period_end":   req.PeriodEnd,
	})
	go notifyAdmins("Settlement generated",
		fmt.Sprintf("Draft settlement #%d covers %s to %s", settlement.ID, req.PeriodStart, req.PeriodEnd))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"settlement": settlement, "lines": lines})
}

// RegenerateSettlement recomputes a DRAFT settlement against current data
func (sc *SettlementController) RegenerateSettlement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	settlement, lines, err := services.NewSettlementService().Regenerate(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSettlementNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		case errors.Is(err, services.ErrSettlementFinal):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Settlement is final and cannot be regenerated"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to regenerate settlement"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "settlements", settlement.ID, fiber.Map{"action": "regenerate"})

	return c.JSON(fiber.Map{"settlement": settlement, "lines": lines})
}

// FinalizeSettlement flips a DRAFT settlement to FINAL. Final settlements are
// immutable.
func (sc *SettlementController) FinalizeSettlement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	settlement, err := services.NewSettlementService().Finalize(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSettlementNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		case errors.Is(err, services.ErrSettlementFinal):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Settlement is already final"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize settlement"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "settlements", settlement.ID, fiber.Map{"action": "finalize"})
	go notifyAdmins("Settlement finalized",
		fmt.Sprintf("Settlement #%d is now final", settlement.ID))

	return c.JSON(fiber.Map{"settlement": settlement})
}

// DeleteSettlement deletes a DRAFT settlement with its lines and allocations
func (sc *SettlementController) DeleteSettlement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	if err := services.NewSettlementService().Delete(uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrSettlementNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		case errors.Is(err, services.ErrSettlementFinal):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Settlement is final and cannot be deleted"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete settlement"})
		}
	}

	middleware.LogActivity(c, "DELETE", "settlements", uint(id), nil)

	return c.JSON(fiber.Map{"deleted": true})
}

// GetAllocations returns a page of a settlement's allocation rows, optionally
// filtered by trainer
func (sc *SettlementController) GetAllocations(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	var trainerID *uint
	if trainerParam := c.Query("trainer_id"); trainerParam != "" {
		parsed, err := strconv.ParseUint(trainerParam, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer_id"})
		}
		tid := uint(parsed)
		trainerID = &tid
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offset cannot be negative"})
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit cannot be negative"})
	}

	page, err := services.NewSettlementService().Allocations(uint(id), trainerID, offset, limit)
	if err != nil {
		if errors.Is(err, services.ErrSettlementNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch allocations"})
	}

	return c.JSON(page)
}
