package controllers

import (
	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/middleware"
	"gymdesk_go/models"
	"gymdesk_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{
		hub: hub,
	}
}

// validateJWT validates a JWT token and returns the associated account
func (wsc *WebSocketController) validateJWT(tokenString string) (*models.Account, error) {
	token, err := jwt.ParseWithClaims(tokenString, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*middleware.Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrInvalidKey
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND status = ?", claims.AccountID, models.AccountActive).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

// HandleWebSocket rejects plain HTTP requests to the WebSocket endpoint
func (wsc *WebSocketController) HandleWebSocket(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Use the WebSocket endpoint: ws://<host>/ws?token=YOUR_JWT",
	})
}

// WebSocketHandler returns a Fiber WebSocket handler that validates JWT and connects to hub
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("WebSocket handler panic: %v", r)
			}
		}()

		token := c.Query("token")
		if token == "" {
			logrus.Warn("WebSocket connection rejected: missing token")
			c.WriteMessage(fiberws.CloseMessage, []byte("Missing token"))
			c.Close()
			return
		}

		account, err := wsc.validateJWT(token)
		if err != nil {
			logrus.WithError(err).Warn("WebSocket connection rejected: invalid token")
			c.WriteMessage(fiberws.CloseMessage, []byte("Invalid token"))
			c.Close()
			return
		}

		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"email":      account.Email,
		}).Info("WebSocket connection established")

		wsc.hub.ServeFiberWS(c, account.ID)
	})
}

// GetWebSocketStats returns WebSocket connection statistics (admin only)
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
