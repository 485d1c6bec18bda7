package services

import (
	"testing"
	"time"

	"gymdesk_go/models"
	"gymdesk_go/utils"
)

func TestParsePeriod(t *testing.T) {
	start, end, err := ParsePeriod("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Month() != time.January || start.Day() != 1 {
		t.Fatalf("unexpected start %v", start)
	}
	if end.Day() != 31 {
		t.Fatalf("unexpected end %v", end)
	}

	// Single day period is valid.
	if _, _, err := ParsePeriod("2026-01-15", "2026-01-15"); err != nil {
		t.Fatalf("single-day period must be accepted: %v", err)
	}
}

// Period boundaries must live in the same location attendance instants are
// built in, or a late record on the last day of the period escapes it when the
// server's local zone is ahead of UTC.
func TestParsePeriodIgnoresLocalZone(t *testing.T) {
	origLocal := time.Local
	time.Local = time.FixedZone("UTC+7", 7*3600)
	defer func() { time.Local = origLocal }()

	start, end, err := ParsePeriod("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Location() != time.UTC || end.Location() != time.UTC {
		t.Fatalf("period must parse in UTC, got %v and %v", start.Location(), end.Location())
	}

	date, err := utils.ParseDate("2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trainedAt, err := utils.CombineDateTime(date, "23:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	periodEndExclusive := end.AddDate(0, 0, 1)
	if trainedAt.Before(start) || !trainedAt.Before(periodEndExclusive) {
		t.Fatalf("last-day attendance %v must fall inside %v..%v", trainedAt, start, periodEndExclusive)
	}
}

func TestParsePeriodInvalid(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{name: "malformed start", start: "01/01/2026", end: "2026-01-31"},
		{name: "malformed end", start: "2026-01-01", end: "31-01-2026"},
		{name: "end before start", start: "2026-02-01", end: "2026-01-31"},
		{name: "empty", start: "", end: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParsePeriod(tc.start, tc.end); err == nil {
				t.Fatalf("expected error for %q..%q", tc.start, tc.end)
			}
		})
	}
}

func TestBuildAllocationsOnePerRecord(t *testing.T) {
	subID := uint(4)
	records := []models.AttendanceRecord{
		{BaseModel: models.BaseModel{ID: 1}, TrainerID: 7, TraineeID: 10, PaymentStatus: models.PaymentPaid},
		{BaseModel: models.BaseModel{ID: 2}, TrainerID: 8, TraineeID: 11, PaymentStatus: models.PaymentUnpaid},
	}
	prices := map[uint]PriceResult{
		1: {PriceCents: 50000, Reason: models.ReasonPunchCredit, SubscriptionType: models.PlanTypePunch, SubscriptionID: &subID, IsFinal: true},
		2: {PriceCents: 0, Reason: models.ReasonUnpaid, IsFinal: true},
	}

	allocations := BuildAllocations(99, records, prices)

	if len(allocations) != len(records) {
		t.Fatalf("expected one allocation per record, got %d for %d records", len(allocations), len(records))
	}

	first := allocations[0]
	if first.SettlementID != 99 || first.AttendanceID != 1 || first.TrainerID != 7 {
		t.Fatalf("unexpected allocation %+v", first)
	}
	if first.ValueCents != 50000 || first.Reason != models.ReasonPunchCredit {
		t.Fatalf("unexpected allocation value %+v", first)
	}
	if first.SubscriptionID == nil || *first.SubscriptionID != subID {
		t.Fatalf("allocation must carry the priced subscription")
	}

	second := allocations[1]
	if second.ValueCents != 0 || second.Reason != models.ReasonUnpaid {
		t.Fatalf("unpaid record must yield a zero-value allocation, got %+v", second)
	}
}

func TestRollupLinesConservation(t *testing.T) {
	subA := uint(1)
	subB := uint(2)
	allocations := []models.AllocationRow{
		{SettlementID: 99, AttendanceID: 1, TrainerID: 7, SubscriptionID: &subA, ValueCents: 50000, Reason: models.ReasonPunchCredit},
		{SettlementID: 99, AttendanceID: 2, TrainerID: 7, SubscriptionID: &subB, ValueCents: 25000, Reason: models.ReasonTimeProrata},
		{SettlementID: 99, AttendanceID: 3, TrainerID: 7, ValueCents: 0, Reason: models.ReasonUnpaid},
		{SettlementID: 99, AttendanceID: 4, TrainerID: 8, SubscriptionID: &subA, ValueCents: 50000, Reason: models.ReasonPunchCredit},
	}

	lines := RollupLines(99, allocations)

	if len(lines) != 2 {
		t.Fatalf("expected one line per trainer, got %d", len(lines))
	}

	var lineTotal, allocTotal int64
	for _, line := range lines {
		lineTotal += line.AmountCents
	}
	for _, alloc := range allocations {
		allocTotal += alloc.ValueCents
	}
	if lineTotal != allocTotal {
		t.Fatalf("line total %d must equal allocation total %d", lineTotal, allocTotal)
	}

	// Lines are sorted by trainer id.
	if lines[0].TrainerID != 7 || lines[1].TrainerID != 8 {
		t.Fatalf("lines must be ordered by trainer, got %d then %d", lines[0].TrainerID, lines[1].TrainerID)
	}

	first := lines[0]
	if first.AmountCents != 75000 {
		t.Fatalf("expected trainer 7 amount 75000, got %d", first.AmountCents)
	}
	if first.AttendanceCount != 3 || first.UnpaidAttendanceCount != 1 {
		t.Fatalf("unexpected counts %+v", first)
	}
	if first.PunchCents != 50000 || first.TimeCents != 25000 {
		t.Fatalf("unexpected reason split %+v", first)
	}
}

func TestRollupLinesEmpty(t *testing.T) {
	lines := RollupLines(99, nil)
	if len(lines) != 0 {
		t.Fatalf("expected no lines for empty allocations, got %d", len(lines))
	}
}
