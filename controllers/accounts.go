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

type AccountController struct{}

// CreateAccountRequest represents the account provisioning request body
type CreateAccountRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required"`
	ProfileID *uint  `json:"profile_id"`
}

// GetAccounts returns all accounts
func (ac *AccountController) GetAccounts(c *fiber.Ctx) error {
	var accounts []models.Account
	query := database.DB.Preload("TrainerProfile").Preload("TraineeProfile")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("id ASC").Find(&accounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch accounts",
		})
	}

	return c.JSON(fiber.Map{"accounts": accounts})
}

// GetAccount returns a single account
func (ac *AccountController) GetAccount(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	var account models.Account
	if err := database.DB.Preload("TrainerProfile").Preload("TraineeProfile").First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch account"})
	}

	return c.JSON(fiber.Map{"account": account})
}

// CreateAccount provisions a login, optionally attaching it to an existing
// trainer or trainee profile
func (ac *AccountController) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !utils.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	var existing models.Account
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	account := models.Account{
		Email:    req.Email,
		Password: hashedPassword,
		Role:     req.Role,
		Status:   models.AccountActive,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		if req.ProfileID == nil {
			return nil
		}
		switch req.Role {
		case models.RoleTrainer:
			result := tx.Model(&models.TrainerProfile{}).
				Where("id = ? AND account_id IS NULL", *req.ProfileID).
				Update("account_id", account.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("trainer profile not found or already linked")
			}
		case models.RoleTrainee:
			result := tx.Model(&models.TraineeProfile{}).
				Where("id = ? AND account_id IS NULL", *req.ProfileID).
				Update("account_id", account.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("trainee profile not found or already linked")
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	middleware.LogActivity(c, "CREATE", "accounts", account.ID, fiber.Map{
		"email": account.Email,
		"role":  account.Role,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account": utils.ToAccountShort(account),
	})
}

// UpdateAccount updates role or status of an account
func (ac *AccountController) UpdateAccount(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch account"})
	}

	var req struct {
		Role   *string `json:"role"`
		Status *string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		if !utils.IsValidRole(*req.Role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		if !utils.IsValidAccountStatus(*req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&account).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update account"})
	}

	middleware.LogActivity(c, "UPDATE", "accounts", account.ID, updates)

	return c.JSON(fiber.Map{"account": account})
}

// DeleteAccount disables an account instead of removing it, keeping activity
// history intact
func (ac *AccountController) DeleteAccount(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	current, err := middleware.GetCurrentAccount(c)
	if err == nil && current.ID == uint(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot disable your own account"})
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch account"})
	}

	if err := database.DB.Model(&account).Update("status", models.AccountDisabled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to disable account"})
	}

	middleware.LogActivity(c, "DELETE", "accounts", account.ID, fiber.Map{"email": account.Email})

	return c.JSON(fiber.Map{"message": "Account disabled"})
}
