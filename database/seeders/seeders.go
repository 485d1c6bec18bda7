package seeders

import (
	"log"

	"gymdesk_go/database"
	"gymdesk_go/models"
	"gymdesk_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedAccounts()
	SeedGymLocations()
	SeedPlans()
	SeedTrainingTimes()

	log.Println("Database seeding completed successfully!")
}

// SeedAccounts creates the initial admin account
func SeedAccounts() {
	var count int64
	database.DB.Model(&models.Account{}).Count(&count)
	if count > 0 {
		log.Println("Accounts already seeded, skipping...")
		return
	}

	hashedPassword, _ := utils.HashPassword("admin123")

	admin := models.Account{
		Email:    "admin@gymdesk.local",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		Status:   models.AccountActive,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin account: %v", err)
		return
	}

	log.Println("Accounts seeded successfully")
}

// SeedGymLocations seeds the default training location
func SeedGymLocations() {
	var count int64
	database.DB.Model(&models.GymLocation{}).Count(&count)
	if count > 0 {
		log.Println("Gym locations already seeded, skipping...")
		return
	}

	locations := []models.GymLocation{
		{
			Name:     "Main Gym",
			Address:  "1 Fitness Way",
			IsActive: true,
		},
	}

	for _, location := range locations {
		if err := database.DB.Create(&location).Error; err != nil {
			log.Printf("Error seeding gym location %s: %v", location.Name, err)
		}
	}

	log.Println("Gym locations seeded successfully")
}

// SeedPlans seeds a starter set of punch-card and time-based plans
func SeedPlans() {
	var count int64
	database.DB.Model(&models.Plan{}).Count(&count)
	if count > 0 {
		log.Println("Plans already seeded, skipping...")
		return
	}

	tenSessions := 10
	twentySessions := 20
	thirtyDays := 30
	ninetyDays := 90

	plans := []models.Plan{
		{
			Type:       models.PlanTypePunch,
			Title:      "10 Session Punch Card",
			PriceCents: 350000,
			Credits:    &tenSessions,
			IsActive:   true,
		},
		{
			Type:       models.PlanTypePunch,
			Title:      "20 Session Punch Card",
			PriceCents: 600000,
			Credits:    &twentySessions,
			IsActive:   true,
		},
		{
			Type:         models.PlanTypeTime,
			Title:        "Monthly Unlimited",
			PriceCents:   250000,
			DurationDays: &thirtyDays,
			IsActive:     true,
		},
		{
			Type:         models.PlanTypeTime,
			Title:        "Quarterly Unlimited",
			PriceCents:   650000,
			DurationDays: &ninetyDays,
			IsActive:     true,
		},
	}

	for _, plan := range plans {
		if err := database.DB.Create(&plan).Error; err != nil {
			log.Printf("Error seeding plan %s: %v", plan.Title, err)
		}
	}

	log.Println("Plans seeded successfully")
}

// SeedTrainingTimes seeds common hourly slots
func SeedTrainingTimes() {
	var count int64
	database.DB.Model(&models.TrainingTime{}).Count(&count)
	if count > 0 {
		log.Println("Training times already seeded, skipping...")
		return
	}

	times := []models.TrainingTime{
		{StartTime: "08:00", EndTime: "09:00"},
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "10:00", EndTime: "11:00"},
		{StartTime: "17:00", EndTime: "18:00"},
		{StartTime: "18:00", EndTime: "19:00"},
	}

	for _, slot := range times {
		if err := database.DB.Create(&slot).Error; err != nil {
			log.Printf("Error seeding training time %s-%s: %v", slot.StartTime, slot.EndTime, err)
		}
	}

	log.Println("Training times seeded successfully")
}
