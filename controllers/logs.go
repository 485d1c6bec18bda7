package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gymdesk_go/database"
	"gymdesk_go/models"
	"gymdesk_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LogController struct{}

// LogResponse represents a log entry response
type LogResponse struct {
	ID         uint                   `json:"id"`
	AccountID  uint                   `json:"account_id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID uint                   `json:"resource_id"`
	Details    map[string]interface{} `json:"details"`
	IPAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	CreatedAt  time.Time              `json:"created_at"`
	Account    *AccountBasicInfo      `json:"account,omitempty"`
}

type AccountBasicInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LogsStatsResponse struct {
	Total             int64            `json:"total"`
	TotalToday        int64            `json:"total_today"`
	TotalThisWeek     int64            `json:"total_this_week"`
	TotalThisMonth    int64            `json:"total_this_month"`
	ActionBreakdown   map[string]int64 `json:"action_breakdown"`
	ResourceBreakdown map[string]int64 `json:"resource_breakdown"`
	RecentActivity    []LogResponse    `json:"recent_activity"`
}

func toLogResponse(log models.ActivityLog) LogResponse {
	resp := LogResponse{
		ID:         log.ID,
		AccountID:  log.AccountID,
		Action:     log.Action,
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		IPAddress:  log.IPAddress,
		UserAgent:  log.UserAgent,
		CreatedAt:  log.CreatedAt,
	}

	if len(log.Details) > 0 {
		var details map[string]interface{}
		if err := json.Unmarshal(log.Details, &details); err == nil {
			resp.Details = details
		}
	}

	if log.Account.ID > 0 {
		resp.Account = &AccountBasicInfo{
			ID:    log.Account.ID,
			Email: log.Account.Email,
			Role:  log.Account.Role,
		}
	}
	return resp
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	offset := (page - 1) * limit

	query := database.DB.Model(&models.ActivityLog{}).Preload("Account")

	if accountID := c.Query("account_id"); accountID != "" {
		query = query.Where("account_id = ?", accountID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if ipAddress := c.Query("ip_address"); ipAddress != "" {
		query = query.Where("ip_address = ?", ipAddress)
	}

	if startDate := c.Query("start_date"); startDate != "" {
		if parsedDate, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("created_at >= ?", parsedDate)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if parsedDate, err := time.Parse("2006-01-02", endDate); err == nil {
			query = query.Where("created_at <= ?", parsedDate.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs count",
		})
	}

	var activityLogs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activityLogs).Error; err != nil {
		logrus.WithError(err).Error("Failed to retrieve logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs",
		})
	}

	logs := make([]LogResponse, len(activityLogs))
	for i, log := range activityLogs {
		logs[i] = toLogResponse(log)
	}

	return c.JSON(fiber.Map{
		"logs":        logs,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GetLogStats provides logging statistics
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := LogsStatsResponse{
		ActionBreakdown:   make(map[string]int64),
		ResourceBreakdown: make(map[string]int64),
	}

	database.DB.Model(&models.ActivityLog{}).Count(&stats.Total)
	database.DB.Model(&models.ActivityLog{}).
		Where("created_at >= ?", today).
		Count(&stats.TotalToday)
	database.DB.Model(&models.ActivityLog{}).
		Where("created_at >= ?", thisWeek).
		Count(&stats.TotalThisWeek)
	database.DB.Model(&models.ActivityLog{}).
		Where("created_at >= ?", thisMonth).
		Count(&stats.TotalThisMonth)

	var actionStats []struct {
		Action string `json:"action"`
		Count  int64  `json:"count"`
	}
	database.DB.Model(&models.ActivityLog{}).
		Select("action, COUNT(*) as count").
		Group("action").
		Find(&actionStats)
	for _, stat := range actionStats {
		stats.ActionBreakdown[stat.Action] = stat.Count
	}

	var resourceStats []struct {
		Resource string `json:"resource"`
		Count    int64  `json:"count"`
	}
	database.DB.Model(&models.ActivityLog{}).
		Select("resource, COUNT(*) as count").
		Group("resource").
		Find(&resourceStats)
	for _, stat := range resourceStats {
		stats.ResourceBreakdown[stat.Resource] = stat.Count
	}

	var recentLogs []models.ActivityLog
	database.DB.Preload("Account").
		Order("created_at DESC").
		Limit(10).
		Find(&recentLogs)
	for _, log := range recentLogs {
		stats.RecentActivity = append(stats.RecentActivity, toLogResponse(log))
	}

	return c.JSON(stats)
}

// GetLog retrieves a single log entry by ID
func (lc *LogController) GetLog(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid log ID",
		})
	}

	var activityLog models.ActivityLog
	if err := database.DB.Preload("Account").First(&activityLog, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Log not found",
			})
		}
		logrus.WithError(err).Error("Failed to retrieve log")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve log",
		})
	}

	return c.JSON(toLogResponse(activityLog))
}

// DeleteOldLogs removes logs older than specified days (Admin only)
func (lc *LogController) DeleteOldLogs(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid days parameter",
		})
	}

	cutoffDate := time.Now().AddDate(0, 0, -days)

	result := database.DB.Where("created_at < ?", cutoffDate).Delete(&models.ActivityLog{})
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to delete old logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete old logs",
		})
	}

	return c.JSON(fiber.Map{
		"message":       "Old logs deleted successfully",
		"deleted_count": result.RowsAffected,
		"cutoff_date":   cutoffDate,
	})
}

// ExportLogs exports logs to CSV format (Admin only)
func (lc *LogController) ExportLogs(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=activity_logs.csv")

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	query := database.DB.Model(&models.ActivityLog{}).Preload("Account")

	if startDate != "" {
		if parsedDate, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("created_at >= ?", parsedDate)
		}
	}
	if endDate != "" {
		if parsedDate, err := time.Parse("2006-01-02", endDate); err == nil {
			query = query.Where("created_at <= ?", parsedDate.Add(24*time.Hour))
		}
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		logrus.WithError(err).Error("Failed to retrieve logs for export")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs for export",
		})
	}

	csvContent := "ID,Account ID,Email,Role,Action,Resource,Resource ID,IP Address,User Agent,Created At,Details\n"

	for _, log := range logs {
		email := ""
		role := ""
		if log.Account.ID > 0 {
			email = log.Account.Email
			role = log.Account.Role
		}

		details := ""
		if len(log.Details) > 0 {
			details = string(log.Details)
		}

		csvContent += fmt.Sprintf("%d,%d,%s,%s,%s,%s,%d,%s,%s,%s,\"%s\"\n",
			log.ID,
			log.AccountID,
			email,
			role,
			log.Action,
			log.Resource,
			log.ResourceID,
			log.IPAddress,
			log.UserAgent,
			log.CreatedAt.Format("2006-01-02 15:04:05"),
			details,
		)
	}

	return c.SendString(csvContent)
}

// GetArchivedLogs lists log archives stored in S3 (Admin only)
func (lc *LogController) GetArchivedLogs(c *fiber.Ctx) error {
	archives, err := services.NewLogArchiveService().GetArchivedLogs()
	if err != nil {
		logrus.WithError(err).Error("Failed to list log archives")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list log archives",
		})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}

// DownloadArchivedLogs streams one archive from S3 (Admin only)
func (lc *LogController) DownloadArchivedLogs(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid archive ID",
		})
	}

	body, fileName, err := services.NewLogArchiveService().DownloadArchivedLogs(uint(id))
	if err != nil {
		logrus.WithError(err).Error("Failed to download log archive")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Archive not found or not downloadable",
		})
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read archive",
		})
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	return c.Send(data)
}

// FlushCachedLogs manually flushes cached logs to database (Admin only)
func (lc *LogController) FlushCachedLogs(c *fiber.Ctx) error {
	ctx := context.Background()
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Redis not available",
		})
	}

	keys, err := redisClient.Keys(ctx, "log:*").Result()
	if err != nil {
		logrus.WithError(err).Error("Failed to get cached log keys")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve cached logs",
		})
	}

	var processedCount int
	var errorCount int

	for _, key := range keys {
		logData, err := redisClient.Get(ctx, key).Result()
		if err != nil {
			errorCount++
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Error("Failed to save cached log to database")
			errorCount++
			continue
		}

		if err := redisClient.Del(ctx, key).Err(); err != nil {
			logrus.WithError(err).Error("Failed to remove cached log")
		}

		processedCount++
	}

	return c.JSON(fiber.Map{
		"message":         "Cached logs flushing completed",
		"processed_count": processedCount,
		"error_count":     errorCount,
		"total_keys":      len(keys),
	})
}
