package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk_go/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword("secret123", hash))
	assert.Error(t, CheckPassword("wrong", hash))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(models.RoleAdmin))
	assert.True(t, IsValidRole(models.RoleTrainer))
	assert.True(t, IsValidRole(models.RoleTrainee))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestIsValidPlanType(t *testing.T) {
	assert.True(t, IsValidPlanType(models.PlanTypePunch))
	assert.True(t, IsValidPlanType(models.PlanTypeTime))
	assert.False(t, IsValidPlanType("MONTHLY"))
}

func TestIsValidTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "09:05", "12:30", "23:59"}
	for _, v := range valid {
		assert.True(t, IsValidTimeOfDay(v), v)
	}

	invalid := []string{"24:00", "9:05", "12:60", "12:5", "midday", "", "12:30:00"}
	for _, v := range invalid {
		assert.False(t, IsValidTimeOfDay(v), v)
	}
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2026, date.Year())
	assert.Equal(t, time.March, date.Month())
	assert.Equal(t, 10, date.Day())

	_, err = ParseDate("10/03/2026")
	assert.Error(t, err)
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

	at, err := CombineDateTime(date, "09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, date.Year(), at.Year())
	assert.Equal(t, date.Location(), at.Location())

	_, err = CombineDateTime(date, "25:00")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\x00 "))
	assert.Equal(t, "", SanitizeString("\x00"))
}
