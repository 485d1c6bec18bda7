package services

import (
	"testing"
	"time"

	"gymdesk_go/models"
)

func record(id uint, trainerID, traineeID, locationID uint, trainedAt time.Time, status string) models.AttendanceRecord {
	return models.AttendanceRecord{
		BaseModel:     models.BaseModel{ID: id},
		TrainerID:     trainerID,
		TraineeID:     traineeID,
		LocationID:    locationID,
		TrainedAt:     trainedAt,
		PaymentStatus: status,
	}
}

func TestSessionKey(t *testing.T) {
	trainedAt := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	key := SessionKey(trainedAt, 7, 3, 60)
	if key != "2026-03-10|7|3|09:00" {
		t.Fatalf("unexpected session key %q", key)
	}

	// 30 minute buckets floor to half-hour boundaries.
	key = SessionKey(time.Date(2026, 3, 10, 9, 45, 0, 0, time.UTC), 7, 3, 30)
	if key != "2026-03-10|7|3|09:30" {
		t.Fatalf("unexpected session key %q", key)
	}
}

func TestBuildSessionsGroupsWithinBucket(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record(1, 7, 10, 3, day.Add(9*time.Hour+5*time.Minute), models.PaymentPaid),
		record(2, 7, 11, 3, day.Add(9*time.Hour+50*time.Minute), models.PaymentUnpaid),
		record(3, 7, 12, 3, day.Add(10*time.Hour+5*time.Minute), models.PaymentPaid),
	}

	sessions, err := BuildSessions(records, nil, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	first := sessions[0]
	if first.SessionKey != "2026-03-10|7|3|09:00" {
		t.Fatalf("unexpected first session key %q", first.SessionKey)
	}
	if len(first.Attendance) != 2 {
		t.Fatalf("expected 2 records in 09:00 bucket, got %d", len(first.Attendance))
	}
	if first.Totals.Count != 2 || first.Totals.Paid != 1 || first.Totals.Unpaid != 1 {
		t.Fatalf("unexpected totals %+v", first.Totals)
	}
	if !first.End.Equal(first.Start.Add(time.Hour)) {
		t.Fatalf("session end must be start plus bucket width")
	}

	second := sessions[1]
	if second.SessionKey != "2026-03-10|7|3|10:00" {
		t.Fatalf("unexpected second session key %q", second.SessionKey)
	}
	if len(second.Attendance) != 1 {
		t.Fatalf("expected 1 record in 10:00 bucket, got %d", len(second.Attendance))
	}
}

func TestBuildSessionsSplitsByTrainerAndLocation(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record(1, 7, 10, 3, at, models.PaymentPaid),
		record(2, 8, 11, 3, at, models.PaymentPaid),
		record(3, 7, 12, 4, at, models.PaymentPaid),
	}

	sessions, err := BuildSessions(records, nil, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("same bucket with different trainer or location must split, got %d sessions", len(sessions))
	}
}

func TestBuildSessionsAttachesPrices(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record(1, 7, 10, 3, at, models.PaymentPaid),
	}
	prices := map[uint]PriceResult{
		1: {PriceCents: 50000, Reason: models.ReasonPunchCredit, IsFinal: true},
	}

	sessions, err := BuildSessions(records, prices, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := sessions[0].Attendance[0]
	if item.Price == nil || item.Price.PriceCents != 50000 {
		t.Fatalf("expected attached price of 50000, got %+v", item.Price)
	}
}

func TestBuildSessionsOrdering(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record(5, 7, 10, 3, day.Add(9*time.Hour+40*time.Minute), models.PaymentPaid),
		record(2, 7, 11, 3, day.Add(9*time.Hour+10*time.Minute), models.PaymentPaid),
		record(9, 6, 12, 3, day.Add(14*time.Hour), models.PaymentPaid),
	}

	sessions, err := BuildSessions(records, nil, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if !sessions[0].Start.Before(sessions[1].Start) {
		t.Fatalf("sessions must be ordered by start time")
	}

	attendance := sessions[0].Attendance
	if attendance[0].ID != 2 || attendance[1].ID != 5 {
		t.Fatalf("records within a session must be ordered by trained_at, got %d then %d", attendance[0].ID, attendance[1].ID)
	}
}

func TestBuildSessionsRejectsNonPositiveBucket(t *testing.T) {
	for _, width := range []int{0, -15} {
		if _, err := BuildSessions(nil, nil, width); err == nil {
			t.Fatalf("expected error for bucket width %d", width)
		}
	}
}
