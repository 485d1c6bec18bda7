package controllers

import (
	"testing"
	"time"

	"gymdesk_go/models"
)

func intPtr(v int) *int { return &v }

func TestApplyPlanTermsPunch(t *testing.T) {
	var sub models.Subscription
	plan := models.Plan{Type: models.PlanTypePunch, Credits: intPtr(10)}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := applyPlanTerms(&sub, plan, start); err != nil {
		t.Fatalf("applyPlanTerms() error = %v", err)
	}
	if sub.InitialCredits == nil || *sub.InitialCredits != 10 {
		t.Errorf("InitialCredits = %v, want 10", sub.InitialCredits)
	}
	if sub.RemainingCredits == nil || *sub.RemainingCredits != 10 {
		t.Errorf("RemainingCredits = %v, want 10", sub.RemainingCredits)
	}
	if sub.EndsAt != nil {
		t.Errorf("EndsAt = %v, want nil for punch plan", sub.EndsAt)
	}
}

func TestApplyPlanTermsTime(t *testing.T) {
	var sub models.Subscription
	plan := models.Plan{Type: models.PlanTypeTime, DurationDays: intPtr(30)}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := applyPlanTerms(&sub, plan, start); err != nil {
		t.Fatalf("applyPlanTerms() error = %v", err)
	}
	want := start.AddDate(0, 0, 30)
	if sub.EndsAt == nil || !sub.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", sub.EndsAt, want)
	}
}

func TestApplyPlanTermsMisconfiguredPlans(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		plan models.Plan
	}{
		{"punch without credits", models.Plan{Type: models.PlanTypePunch}},
		{"punch with zero credits", models.Plan{Type: models.PlanTypePunch, Credits: intPtr(0)}},
		{"time without duration", models.Plan{Type: models.PlanTypeTime}},
		{"time with zero duration", models.Plan{Type: models.PlanTypeTime, DurationDays: intPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub models.Subscription
			if err := applyPlanTerms(&sub, tt.plan, start); err == nil {
				t.Fatal("applyPlanTerms() expected error for misconfigured plan")
			}
		})
	}
}
