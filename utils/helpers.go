package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gymdesk_go/models"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	validRoles := []string{models.RoleAdmin, models.RoleTrainer, models.RoleTrainee}
	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// IsValidAccountStatus checks if an account status is valid
func IsValidAccountStatus(status string) bool {
	return status == models.AccountActive || status == models.AccountDisabled
}

// IsValidPlanType checks if a plan type is valid
func IsValidPlanType(planType string) bool {
	return planType == models.PlanTypePunch || planType == models.PlanTypeTime
}

// IsValidSubscriptionStatus checks if a subscription status is valid
func IsValidSubscriptionStatus(status string) bool {
	switch status {
	case models.SubscriptionActive, models.SubscriptionExpired, models.SubscriptionCancelled:
		return true
	}
	return false
}

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTimeOfDay checks an HH:MM string
func IsValidTimeOfDay(value string) bool {
	return hhmmPattern.MatchString(value)
}

// ParseDate parses a YYYY-MM-DD date string
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// CombineDateTime merges a calendar date and an HH:MM clock time into one
// instant in the date's location
func CombineDateTime(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	return input
}
