package controllers

import (
	"strings"
	"time"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	"gymdesk_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type AuthController struct{}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an account and returns a JWT token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var account models.Account
	if err := database.DB.Where("email = ? AND status = ?", req.Email, models.AccountActive).First(&account).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := utils.CheckPassword(req.Password, account.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(&account)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	database.DB.Preload("TrainerProfile").Preload("TraineeProfile").First(&account, account.ID)

	middleware.LogActivity(c, "LOGIN", "auth", account.ID, fiber.Map{
		"email": account.Email,
		"role":  account.Role,
	})

	return c.JSON(fiber.Map{
		"accessToken": token,
		"account":     utils.ToAccountShort(account),
	})
}

// Logout invalidates the current JWT by storing it in the Redis blacklist
// until it would expire anyway
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid authorization header format"})
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if token, err := jwt.ParseWithClaims(tokenString, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	}); err == nil {
		if claims, ok := token.Claims.(*middleware.Claims); ok && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	if err := middleware.BlacklistToken(tokenString, expiresAt); err != nil {
		// don't block logout on Redis failure
		middleware.LogActivity(c, "LOGOUT", "auth", 0, fiber.Map{"error": err.Error()})
	}

	if account, err := middleware.GetCurrentAccount(c); err == nil {
		middleware.LogActivity(c, "LOGOUT", "auth", account.ID, fiber.Map{"email": account.Email})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetProfile returns the current account's profile
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	database.DB.Preload("TrainerProfile").Preload("TraineeProfile").First(account, account.ID)

	return c.JSON(fiber.Map{
		"account": account,
	})
}

// ChangePassword allows accounts to change their own password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	account, err := middleware.GetCurrentAccount(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.CheckPassword(req.CurrentPassword, account.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Current password is incorrect",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	if err := database.DB.Model(account).Update("password", hashedPassword).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}

	middleware.LogActivity(c, "UPDATE", "accounts", account.ID, fiber.Map{
		"action": "password_change",
	})

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}
