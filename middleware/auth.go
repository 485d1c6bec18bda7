package middleware

import (
	"context"
	"strings"
	"time"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for an account
func GenerateToken(account *models.Account) (string, error) {
	claims := &Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AppConfig.JWTExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// BlacklistToken stores a revoked token in Redis until it would have expired
func BlacklistToken(tokenString string, expiresAt time.Time) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return redisClient.Set(context.Background(), "token:blacklist:"+tokenString, "1", ttl).Err()
}

func tokenBlacklisted(tokenString string) bool {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return false
	}
	exists, err := redisClient.Exists(context.Background(), "token:blacklist:"+tokenString).Result()
	return err == nil && exists > 0
}

// JWTMiddleware validates JWT tokens
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		if tokenBlacklisted(tokenString) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.AppConfig.JWTSecret), nil
		})

		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		// Verify account still exists and is active
		var account models.Account
		if err := database.DB.Where("id = ? AND status = ?", claims.AccountID, models.AccountActive).First(&account).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Account not found or disabled",
			})
		}

		c.Locals("account", &account)
		c.Locals("claims", claims)
		c.Locals("token", tokenString)

		return c.Next()
	}
}

// RequireRole middleware checks if the account has one of the required roles
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing account claims",
			})
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// RequireAdmin allows only administrators
func RequireAdmin() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

// RequireTrainerOrAdmin allows trainers and administrators
func RequireTrainerOrAdmin() fiber.Handler {
	return RequireRole(models.RoleTrainer, models.RoleAdmin)
}

// GetCurrentAccount returns the current authenticated account
func GetCurrentAccount(c *fiber.Ctx) (*models.Account, error) {
	account, ok := c.Locals("account").(*models.Account)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Account not found in context")
	}
	return account, nil
}

// GetCurrentClaims returns the current JWT claims
func GetCurrentClaims(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals("claims").(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Claims not found in context")
	}
	return claims, nil
}
