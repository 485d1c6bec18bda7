package services

import (
	"testing"
	"time"

	"gymdesk_go/models"
)

func punchSub(id uint, traineeID uint, paidCents int64, initial, remaining int) models.Subscription {
	return models.Subscription{
		BaseModel:        models.BaseModel{ID: id},
		TraineeID:        traineeID,
		Type:             models.PlanTypePunch,
		Status:           models.SubscriptionActive,
		PaidCents:        paidCents,
		StartsAt:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialCredits:   &initial,
		RemainingCredits: &remaining,
	}
}

func timeSub(id uint, traineeID uint, paidCents int64, startsAt, endsAt time.Time) models.Subscription {
	return models.Subscription{
		BaseModel: models.BaseModel{ID: id},
		TraineeID: traineeID,
		Type:      models.PlanTypeTime,
		Status:    models.SubscriptionActive,
		PaidCents: paidCents,
		StartsAt:  startsAt,
		EndsAt:    &endsAt,
	}
}

func TestResolvePricePunchCredit(t *testing.T) {
	sub := punchSub(1, 10, 1200000, 12, 5)
	record := models.AttendanceRecord{
		BaseModel:     models.BaseModel{ID: 100},
		TraineeID:     10,
		TrainedAt:     time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		PaymentStatus: models.PaymentPaid,
	}

	result := ResolvePrice(record, []models.Subscription{sub}, nil, time.Now())

	if result.Reason != models.ReasonPunchCredit {
		t.Fatalf("expected reason %s, got %s", models.ReasonPunchCredit, result.Reason)
	}
	if result.PriceCents != 100000 {
		t.Fatalf("expected 100000 cents per credit, got %d", result.PriceCents)
	}
	if !result.IsFinal {
		t.Fatalf("punch pricing must be final")
	}
	if result.SubscriptionID == nil || *result.SubscriptionID != 1 {
		t.Fatalf("expected subscription 1, got %v", result.SubscriptionID)
	}
}

func TestResolvePricePunchRounding(t *testing.T) {
	tests := []struct {
		name     string
		paid     int64
		credits  int
		expected int64
	}{
		{name: "exact division", paid: 1200000, credits: 12, expected: 100000},
		{name: "rounds half up", paid: 100001, credits: 2, expected: 50001},
		{name: "rounds down below half", paid: 100000, credits: 3, expected: 33333},
		{name: "single credit", paid: 99999, credits: 1, expected: 99999},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sub := punchSub(1, 10, tc.paid, tc.credits, tc.credits)
			record := models.AttendanceRecord{
				BaseModel:     models.BaseModel{ID: 100},
				TraineeID:     10,
				PaymentStatus: models.PaymentPaid,
			}
			result := ResolvePrice(record, []models.Subscription{sub}, nil, time.Now())
			if result.PriceCents != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, result.PriceCents)
			}
		})
	}
}

func TestResolvePriceUnpaidRecord(t *testing.T) {
	sub := punchSub(1, 10, 1200000, 12, 5)
	record := models.AttendanceRecord{
		BaseModel:     models.BaseModel{ID: 100},
		TraineeID:     10,
		PaymentStatus: models.PaymentUnpaid,
	}

	result := ResolvePrice(record, []models.Subscription{sub}, nil, time.Now())

	if result.Reason != models.ReasonUnpaid {
		t.Fatalf("expected reason %s, got %s", models.ReasonUnpaid, result.Reason)
	}
	if result.PriceCents != 0 {
		t.Fatalf("unpaid record must price at 0, got %d", result.PriceCents)
	}
	if !result.IsFinal {
		t.Fatalf("unpaid pricing must be final")
	}
}

func TestResolvePriceNoSubscription(t *testing.T) {
	record := models.AttendanceRecord{
		BaseModel:     models.BaseModel{ID: 100},
		TraineeID:     10,
		PaymentStatus: models.PaymentPaid,
	}

	result := ResolvePrice(record, nil, nil, time.Now())

	if result.Reason != models.ReasonUnpaid || result.PriceCents != 0 || !result.IsFinal {
		t.Fatalf("expected final zero-value unpaid fallback, got %+v", result)
	}
}

func TestResolvePriceTimeProrata(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	sub := timeSub(2, 10, 250000, start, end)
	record := models.AttendanceRecord{
		BaseModel:      models.BaseModel{ID: 100},
		TraineeID:      10,
		TrainedAt:      time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		PaymentStatus:  models.PaymentPaid,
		SubscriptionID: &sub.ID,
	}
	counts := map[uint]int{2: 10}

	// Window still open: value is provisional.
	result := ResolvePrice(record, []models.Subscription{sub}, counts, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	if result.Reason != models.ReasonTimeProrata {
		t.Fatalf("expected reason %s, got %s", models.ReasonTimeProrata, result.Reason)
	}
	if result.PriceCents != 25000 {
		t.Fatalf("expected 25000 per visit, got %d", result.PriceCents)
	}
	if result.IsFinal {
		t.Fatalf("open window must not be final")
	}

	// Window passed: same value, now final.
	result = ResolvePrice(record, []models.Subscription{sub}, counts, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if !result.IsFinal {
		t.Fatalf("closed window must be final")
	}
	if result.PriceCents != 25000 {
		t.Fatalf("value must not move when window closes, got %d", result.PriceCents)
	}
}

func TestResolvePriceTimeFinalOnTerminalStatus(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	sub := timeSub(2, 10, 300000, start, end)
	sub.Status = models.SubscriptionExpired
	record := models.AttendanceRecord{
		BaseModel:      models.BaseModel{ID: 100},
		TraineeID:      10,
		TrainedAt:      time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		PaymentStatus:  models.PaymentPaid,
		SubscriptionID: &sub.ID,
	}

	result := ResolvePrice(record, []models.Subscription{sub}, map[uint]int{2: 3}, start.AddDate(0, 0, 20))
	if !result.IsFinal {
		t.Fatalf("expired subscription pricing must be final even inside the window")
	}
	if result.PriceCents != 100000 {
		t.Fatalf("expected 100000, got %d", result.PriceCents)
	}
}

func TestResolvePriceStampedSubscriptionWins(t *testing.T) {
	// The record is stamped against the punch card even though a TIME
	// subscription also covers the moment.
	punch := punchSub(1, 10, 500000, 10, 0)
	covering := timeSub(2, 10, 250000, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	stamped := punch.ID
	record := models.AttendanceRecord{
		BaseModel:      models.BaseModel{ID: 100},
		TraineeID:      10,
		TrainedAt:      time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		PaymentStatus:  models.PaymentPaid,
		SubscriptionID: &stamped,
	}

	result := ResolvePrice(record, []models.Subscription{covering, punch}, map[uint]int{2: 4}, time.Now())

	if result.Reason != models.ReasonPunchCredit {
		t.Fatalf("stamped subscription must win, got reason %s", result.Reason)
	}
	if result.PriceCents != 50000 {
		t.Fatalf("expected 50000, got %d", result.PriceCents)
	}
}

func TestResolvePriceUnstampedPrefersCoveringTime(t *testing.T) {
	punch := punchSub(1, 10, 500000, 10, 5)
	covering := timeSub(2, 10, 250000, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	record := models.AttendanceRecord{
		BaseModel:     models.BaseModel{ID: 100},
		TraineeID:     10,
		TrainedAt:     time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		PaymentStatus: models.PaymentPaid,
	}

	result := ResolvePrice(record, []models.Subscription{punch, covering}, map[uint]int{2: 5}, time.Now())

	if result.Reason != models.ReasonTimeProrata {
		t.Fatalf("covering TIME subscription must be preferred, got %s", result.Reason)
	}
	if result.PriceCents != 50000 {
		t.Fatalf("expected 50000, got %d", result.PriceCents)
	}
}

func TestResolvePriceZeroBillableCountDivisorClampsToOne(t *testing.T) {
	covering := timeSub(2, 10, 250000, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	record := models.AttendanceRecord{
		BaseModel:      models.BaseModel{ID: 100},
		TraineeID:      10,
		TrainedAt:      time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		PaymentStatus:  models.PaymentPaid,
		SubscriptionID: &covering.ID,
	}

	result := ResolvePrice(record, []models.Subscription{covering}, map[uint]int{}, time.Now())

	if result.PriceCents != 250000 {
		t.Fatalf("missing count must divide by 1, got %d", result.PriceCents)
	}
}

func TestDivideRounded(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		count    int
		expected int64
	}{
		{name: "even split", cents: 100, count: 4, expected: 25},
		{name: "half rounds up", cents: 5, count: 2, expected: 3},
		{name: "below half rounds down", cents: 10, count: 3, expected: 3},
		{name: "negative half rounds away from zero", cents: -5, count: 2, expected: -3},
		{name: "zero count", cents: 100, count: 0, expected: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := divideRounded(tc.cents, tc.count); got != tc.expected {
				t.Fatalf("divideRounded(%d, %d) = %d, expected %d", tc.cents, tc.count, got, tc.expected)
			}
		})
	}
}

func TestCoversInstant(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	sub := timeSub(1, 10, 100, start, end)

	if !coversInstant(&sub, start) {
		t.Fatalf("start bound must be inclusive")
	}
	if !coversInstant(&sub, end) {
		t.Fatalf("end bound must be inclusive")
	}
	if coversInstant(&sub, end.Add(time.Second)) {
		t.Fatalf("after end must not be covered")
	}
	if coversInstant(&sub, start.Add(-time.Second)) {
		t.Fatalf("before start must not be covered")
	}

	openEnded := sub
	openEnded.EndsAt = nil
	if !coversInstant(&openEnded, end.AddDate(10, 0, 0)) {
		t.Fatalf("open-ended subscription must cover any future instant")
	}
}
