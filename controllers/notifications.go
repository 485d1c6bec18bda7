package controllers

import (
	"strconv"
	"time"

	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	notificationsvc "gymdesk_go/services/notifications"
	"gymdesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct{}

// GetNotifications returns notifications for the current account
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var notifications []models.Notification
	var total int64

	query := database.DB.Model(&models.Notification{}).Where("account_id = ?", account.ID)

	if read := c.Query("read"); read == "true" {
		query = query.Where("read = ?", true)
	} else if read == "false" {
		query = query.Where("read = ?", false)
	}

	if notificationType := c.Query("type"); notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	query.Count(&total)

	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	dtos := make([]utils.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = utils.ToNotificationDTO(notifications[i])
	}

	return c.JSON(fiber.Map{
		"notifications": dtos,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetNotification returns a specific notification
func (nc *NotificationController) GetNotification(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	var notification models.Notification
	if err := database.DB.Where("id = ? AND account_id = ?", uint(id), account.ID).
		First(&notification).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{
		"notification": utils.ToNotificationDTO(notification),
	})
}

// CreateNotification creates notifications for one or more accounts (admin only)
func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	var req struct {
		AccountID  uint   `json:"account_id"`
		AccountIDs []uint `json:"account_ids"`
		Role       string `json:"role"`
		Title      string `json:"title" validate:"required"`
		Message    string `json:"message" validate:"required"`
		Type       string `json:"type" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	validTypes := []string{"info", "warning", "error", "success"}
	isValidType := false
	for _, validType := range validTypes {
		if req.Type == validType {
			isValidType = true
			break
		}
	}
	if !isValidType {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification type. Must be: info, warning, error, or success",
		})
	}
	if req.Title == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and message are required",
		})
	}

	var accountIDs []uint

	if req.AccountID != 0 {
		accountIDs = []uint{req.AccountID}
	} else if len(req.AccountIDs) > 0 {
		accountIDs = req.AccountIDs
	} else if req.Role != "" {
		if !utils.IsValidRole(req.Role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid role",
			})
		}
		var accounts []models.Account
		database.DB.Where("role = ? AND status = ?", req.Role, models.AccountActive).Find(&accounts)
		for _, acc := range accounts {
			accountIDs = append(accountIDs, acc.ID)
		}
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Must specify account_id, account_ids, or role",
		})
	}

	if len(accountIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No target accounts found",
		})
	}

	queued := notificationsvc.Queued(req.Title, req.Message, req.Type)
	if err := notificationsvc.NewService().EnqueueOrCreate(accountIDs, queued); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create notifications",
		})
	}

	middleware.LogActivity(c, "CREATE", "notifications", 0, fiber.Map{
		"target_accounts": len(accountIDs),
		"type":            req.Type,
		"title":           req.Title,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Notifications created successfully",
		"target_accounts": len(accountIDs),
	})
}

// MarkAsRead marks a notification as read
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	var notification models.Notification
	if err := database.DB.Where("id = ? AND account_id = ?", uint(id), account.ID).
		First(&notification).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	now := time.Now()
	if err := database.DB.Model(&notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": &now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notification as read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}

// MarkAllAsRead marks all notifications as read for the current account
func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	now := time.Now()
	if err := database.DB.Model(&models.Notification{}).
		Where("account_id = ? AND read = ?", account.ID, false).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": &now,
		}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notifications as read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
	})
}

// DeleteNotification deletes a notification
func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	var notification models.Notification
	if err := database.DB.Where("id = ? AND account_id = ?", uint(id), account.ID).
		First(&notification).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	if err := database.DB.Delete(&notification).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete notification",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification deleted successfully",
	})
}

// GetUnreadCount returns the count of unread notifications for the current account
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	var count int64
	database.DB.Model(&models.Notification{}).
		Where("account_id = ? AND read = ?", account.ID, false).
		Count(&count)

	return c.JSON(fiber.Map{
		"unread_count": count,
	})
}

// GetNotificationStats returns notification statistics (admin only)
func (nc *NotificationController) GetNotificationStats(c *fiber.Ctx) error {
	var stats struct {
		Total  int64            `json:"total"`
		Read   int64            `json:"read"`
		Unread int64            `json:"unread"`
		ByType map[string]int64 `json:"by_type"`
	}

	database.DB.Model(&models.Notification{}).Count(&stats.Total)
	database.DB.Model(&models.Notification{}).Where("read = ?", true).Count(&stats.Read)
	database.DB.Model(&models.Notification{}).Where("read = ?", false).Count(&stats.Unread)

	stats.ByType = make(map[string]int64)
	for _, notType := range []string{"info", "warning", "error", "success"} {
		var count int64
		database.DB.Model(&models.Notification{}).Where("type = ?", notType).Count(&count)
		stats.ByType[notType] = count
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}
