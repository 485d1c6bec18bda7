package main

import (
	"log"
	"os"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/database/seeders"
	"gymdesk_go/middleware"
	"gymdesk_go/routes"
	"gymdesk_go/services"
	"gymdesk_go/services/notifications"
	"gymdesk_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	// Load configuration
	config.LoadConfig()

	// Initialize logging
	setupLogging()

	// Connect to database and Redis
	database.Connect()

	// Seed baseline data (admin account, starter plans)
	seeders.SeedAll()

	// Start log maintenance scheduler
	logArchiveService := services.NewLogArchiveService()
	logArchiveService.StartLogMaintenanceScheduler()
}

func main() {
	// Create WebSocket hub first
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Custom middleware
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware())

	// Liveness endpoint; the detailed report lives at /api/health
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "GymDesk API",
			"version": "1.0.0",
		})
	})

	// Wire notifications to the WebSocket hub globally so any new Service uses it
	notifications.SetDefaultWSHub(wsHub)
	notifService := notifications.NewService()
	notifService.SetWebSocketHub(wsHub)
	if config.AppConfig.UseRedisNotifications {
		stopNotif := make(chan struct{})
		notifService.StartWorker(stopNotif)
	}

	// Expire time-based subscriptions past their end date
	sweeper := services.NewSubscriptionSweeper()
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start subscription sweeper:", err)
	}

	// API routes
	routes.SetupRoutes(app, wsHub)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	addr := ":" + config.AppConfig.Port
	logrus.WithFields(logrus.Fields{
		"port":        config.AppConfig.Port,
		"environment": config.AppConfig.AppEnv,
	}).Info("GymDesk API starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if config.AppConfig.AppEnv == "development" || config.AppConfig.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return
	}

	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Warning: could not open log file %s: %v", config.AppConfig.LogFile, err)
		logrus.SetOutput(os.Stdout)
		return
	}
	logrus.SetOutput(file)
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
