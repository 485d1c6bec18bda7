package controllers

import (
	"errors"
	"strconv"
	"time"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	"gymdesk_go/services"
	"gymdesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct{}

// BatchAttendanceRequest registers several trainees at once for the same
// trainer, location and moment
type BatchAttendanceRequest struct {
	TrainerID   uint   `json:"trainer_id" validate:"required"`
	TraineeIDs  []uint `json:"trainee_ids" validate:"required"`
	LocationID  uint   `json:"location_id" validate:"required"`
	TrainedDate string `json:"trained_date" validate:"required"` // YYYY-MM-DD
	TrainedTime string `json:"trained_time"`                     // HH:MM, defaults to now
}

// CreateBatch registers a batch of attendance records
func (ac *AttendanceController) CreateBatch(c *fiber.Ctx) error {
	var req BatchAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if len(req.TraineeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trainee_ids is required"})
	}

	date, err := utils.ParseDate(req.TrainedDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trained_date must be a YYYY-MM-DD date"})
	}

	trainedAt := date
	if req.TrainedTime != "" {
		if !utils.IsValidTimeOfDay(req.TrainedTime) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trained_time must be in HH:MM format"})
		}
		trainedAt, err = utils.CombineDateTime(date, req.TrainedTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trained_time"})
		}
	} else {
		now := time.Now()
		trainedAt = time.Date(date.Year(), date.Month(), date.Day(), now.Hour(), now.Minute(), 0, 0, date.Location())
	}

	results, err := services.NewAttendanceService().CreateBatch(req.TrainerID, req.TraineeIDs, req.LocationID, trainedAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CREATE", "attendance", 0, fiber.Map{
		"trainer_id": req.TrainerID,
		"count":      len(results),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"trainer_id": req.TrainerID,
		"trained_at": trainedAt,
		"count":      len(results),
		"results":    results,
	})
}

// GetSessions returns attendance bucketed into sessions with resolved prices
// and the entity lookup tables the client joins by id
func (ac *AttendanceController) GetSessions(c *fiber.Ctx) error {
	startDate, err := utils.ParseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be a YYYY-MM-DD date"})
	}
	endDate, err := utils.ParseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be a YYYY-MM-DD date"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not be before start_date"})
	}

	filters := services.SessionFilters{
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: c.Query("start_time"),
		EndTime:   c.Query("end_time"),
	}
	if filters.StartTime != "" && !utils.IsValidTimeOfDay(filters.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be in HH:MM format"})
	}
	if filters.EndTime != "" && !utils.IsValidTimeOfDay(filters.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be in HH:MM format"})
	}

	if trainerParam := c.Query("trainer_id"); trainerParam != "" {
		trainerID, err := strconv.ParseUint(trainerParam, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer_id"})
		}
		id := uint(trainerID)
		filters.TrainerID = &id
	}

	// Trainers only see their own sessions regardless of the filter they send
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Account not found"})
	}
	if account.Role == models.RoleTrainer {
		var trainer models.TrainerProfile
		if err := database.DB.Where("account_id = ?", account.ID).First(&trainer).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No trainer profile linked to this account"})
		}
		filters.TrainerID = &trainer.ID
	}

	bucketMinutes := config.AppConfig.SessionBucketMinutes
	if bucketParam := c.Query("bucket_minutes"); bucketParam != "" {
		parsed, err := strconv.Atoi(bucketParam)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bucket_minutes must be a positive integer"})
		}
		bucketMinutes = parsed
	}

	sessions, entities, err := services.NewAttendanceService().Sessions(filters, bucketMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build sessions"})
	}

	return c.JSON(fiber.Map{
		"filters":        filters,
		"bucket_minutes": bucketMinutes,
		"sessions":       sessions,
		"entities":       entities,
	})
}

// DeleteAttendance removes one attendance record. Trainers may only delete
// their own records; admins may delete any.
func (ac *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	svc := services.NewAttendanceService()
	record, err := svc.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance record not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance record"})
	}

	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Account not found"})
	}
	if account.Role == models.RoleTrainer {
		var trainer models.TrainerProfile
		if err := database.DB.Where("account_id = ?", account.ID).First(&trainer).Error; err != nil || trainer.ID != record.TrainerID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Trainers may only delete their own attendance"})
		}
	}

	if err := svc.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance record not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete attendance record"})
	}

	middleware.LogActivity(c, "DELETE", "attendance", uint(id), fiber.Map{
		"trainer_id": record.TrainerID,
		"trainee_id": record.TraineeID,
	})

	return c.JSON(fiber.Map{"deleted": true})
}
