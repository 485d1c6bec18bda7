package routes

import (
	"gymdesk_go/controllers"
	"gymdesk_go/middleware"
	"gymdesk_go/services"
	"gymdesk_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	accountController := &controllers.AccountController{}
	trainerController := &controllers.TrainerController{}
	traineeController := &controllers.TraineeController{}
	planController := &controllers.PlanController{}
	gymLocationController := &controllers.GymLocationController{}
	gymSubscriptionController := &controllers.GymSubscriptionController{}
	trainingTimeController := &controllers.TrainingTimeController{}
	subscriptionController := &controllers.SubscriptionController{}
	attendanceController := &controllers.AttendanceController{}
	settlementController := &controllers.SettlementController{}
	notificationController := &controllers.NotificationController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(services.NewHealthService("GymDesk API", "1.0.0"))
	wsController := controllers.NewWebSocketController(wsHub)

	// API group
	api := app.Group("/api")

	// Health check (no authentication required)
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Profile routes (authenticated accounts)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	// Logout - blacklist token until it expires
	protected.Post("/auth/logout", authController.Logout)

	// Account management routes (admin only)
	accounts := protected.Group("/accounts", middleware.RequireAdmin())
	accounts.Get("/", accountController.GetAccounts)
	accounts.Get("/:id", accountController.GetAccount)
	accounts.Post("/", accountController.CreateAccount)
	accounts.Put("/:id", accountController.UpdateAccount)
	accounts.Delete("/:id", accountController.DeleteAccount)

	// Trainer management routes
	trainers := protected.Group("/trainers")
	trainers.Get("/", middleware.RequireTrainerOrAdmin(), trainerController.GetTrainers)
	trainers.Get("/:id", middleware.RequireTrainerOrAdmin(), trainerController.GetTrainer)
	trainers.Post("/", middleware.RequireAdmin(), trainerController.CreateTrainer)
	trainers.Put("/:id", middleware.RequireAdmin(), trainerController.UpdateTrainer)
	trainers.Delete("/:id", middleware.RequireAdmin(), trainerController.DeleteTrainer)

	// Trainee management routes
	trainees := protected.Group("/trainees")
	trainees.Get("/", middleware.RequireTrainerOrAdmin(), traineeController.GetTrainees)
	trainees.Get("/:id", middleware.RequireTrainerOrAdmin(), traineeController.GetTrainee)
	trainees.Post("/", middleware.RequireTrainerOrAdmin(), traineeController.CreateTrainee)
	trainees.Put("/:id", middleware.RequireTrainerOrAdmin(), traineeController.UpdateTrainee)
	trainees.Delete("/:id", middleware.RequireAdmin(), traineeController.DeleteTrainee)

	// Subscriptions nested under a trainee
	trainees.Get("/:id/subscriptions", middleware.RequireTrainerOrAdmin(), subscriptionController.GetSubscriptionsForTrainee)
	trainees.Post("/:id/subscriptions", middleware.RequireAdmin(), subscriptionController.CreateSubscriptionForTrainee)

	// Subscription lifecycle routes (admin only)
	subscriptions := protected.Group("/subscriptions", middleware.RequireAdmin())
	subscriptions.Patch("/:id/cancel", subscriptionController.CancelSubscription)
	subscriptions.Delete("/:id", subscriptionController.DeleteSubscription)

	// Plan management routes
	plans := protected.Group("/plans")
	plans.Get("/", planController.GetPlans)
	plans.Get("/:id", planController.GetPlan)
	plans.Post("/", middleware.RequireAdmin(), planController.CreatePlan)
	plans.Put("/:id", middleware.RequireAdmin(), planController.UpdatePlan)

	// Gym location management routes
	gymLocations := protected.Group("/gym-locations")
	gymLocations.Get("/", gymLocationController.GetGymLocations)
	gymLocations.Get("/:id", gymLocationController.GetGymLocation)
	gymLocations.Post("/", middleware.RequireAdmin(), gymLocationController.CreateGymLocation)
	gymLocations.Put("/:id", middleware.RequireAdmin(), gymLocationController.UpdateGymLocation)
	gymLocations.Delete("/:id", middleware.RequireAdmin(), gymLocationController.DeleteGymLocation)

	// Partner gym-access program routes
	gymSubscriptions := protected.Group("/gym-subscriptions")
	gymSubscriptions.Get("/", gymSubscriptionController.GetGymSubscriptions)
	gymSubscriptions.Post("/", middleware.RequireAdmin(), gymSubscriptionController.CreateGymSubscription)
	gymSubscriptions.Put("/:id", middleware.RequireAdmin(), gymSubscriptionController.UpdateGymSubscription)
	gymSubscriptions.Delete("/:id", middleware.RequireAdmin(), gymSubscriptionController.DeleteGymSubscription)

	// Reusable training time slots
	trainingTimes := protected.Group("/training-times")
	trainingTimes.Get("/", trainingTimeController.GetTrainingTimes)
	trainingTimes.Post("/", middleware.RequireAdmin(), trainingTimeController.CreateTrainingTime)
	trainingTimes.Delete("/:id", middleware.RequireAdmin(), trainingTimeController.DeleteTrainingTime)

	// Attendance routes
	attendance := protected.Group("/attendance", middleware.RequireTrainerOrAdmin())
	attendance.Post("/batch", attendanceController.CreateBatch)
	attendance.Get("/sessions", attendanceController.GetSessions)
	attendance.Delete("/:id", attendanceController.DeleteAttendance)

	// Settlement routes (admin only)
	settlements := protected.Group("/settlements", middleware.RequireAdmin())
	settlements.Get("/", settlementController.GetSettlements)
	settlements.Post("/", settlementController.GenerateSettlement)
	settlements.Get("/:id", settlementController.GetSettlement)
	settlements.Post("/:id/regenerate", settlementController.RegenerateSettlement)
	settlements.Post("/:id/finalize", settlementController.FinalizeSettlement)
	settlements.Delete("/:id", settlementController.DeleteSettlement)
	settlements.Get("/:id/allocations", settlementController.GetAllocations)
	settlements.Get("/:id/export", settlementController.ExportSettlement)

	// Notification management routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/unread-count", notificationController.GetUnreadCount)
	notifications.Get("/stats", middleware.RequireAdmin(), notificationController.GetNotificationStats)
	notifications.Get("/:id", notificationController.GetNotification)
	notifications.Post("/", middleware.RequireAdmin(), notificationController.CreateNotification)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Patch("/mark-all-read", notificationController.MarkAllAsRead)
	notifications.Delete("/:id", notificationController.DeleteNotification)

	// Log management routes (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
	logs.Get("/export", logController.ExportLogs)
	logs.Delete("/old", logController.DeleteOldLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)
	logs.Get("/archives", logController.GetArchivedLogs)
	logs.Get("/archives/:id/download", logController.DownloadArchivedLogs)
	logs.Get("/:id", logController.GetLog)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireAdmin(), wsController.GetWebSocketStats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
