package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymdesk_go/config"
	"gymdesk_go/models"
	"gymdesk_go/utils"
)

// newSettlementHarness opens a temporary sqlite database carrying the
// settlement schema and returns a service bound to it.
func newSettlementHarness(t *testing.T) *SettlementService {
	t.Helper()

	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}
	if config.AppConfig.SettlementGenerateTimeout == 0 {
		config.AppConfig.SettlementGenerateTimeout = 30 * time.Second
	}
	if config.AppConfig.AllocationPageLimit == 0 {
		config.AppConfig.AllocationPageLimit = 50
	}

	path := filepath.Join(t.TempDir(), "gymdesk.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	ddl := []string{
		`CREATE TABLE subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			trainee_id INTEGER NOT NULL,
			plan_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			paid_cents INTEGER NOT NULL,
			starts_at DATETIME NOT NULL,
			ends_at DATETIME,
			initial_credits INTEGER,
			remaining_credits INTEGER
		)`,
		`CREATE TABLE attendance_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			trainer_id INTEGER NOT NULL,
			trainee_id INTEGER NOT NULL,
			location_id INTEGER NOT NULL,
			trained_at DATETIME NOT NULL,
			payment_status TEXT NOT NULL,
			subscription_id INTEGER
		)`,
		`CREATE TABLE settlements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			period_start DATETIME NOT NULL,
			period_end DATETIME NOT NULL,
			generated_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			notes TEXT
		)`,
		`CREATE TABLE settlement_lines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			settlement_id INTEGER NOT NULL,
			trainer_id INTEGER NOT NULL,
			amount_cents INTEGER NOT NULL,
			attendance_count INTEGER NOT NULL,
			unpaid_attendance_count INTEGER NOT NULL,
			punch_cents INTEGER NOT NULL,
			time_cents INTEGER NOT NULL
		)`,
		`CREATE TABLE allocation_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			settlement_id INTEGER NOT NULL,
			attendance_id INTEGER NOT NULL,
			trainer_id INTEGER NOT NULL,
			subscription_id INTEGER,
			subscription_type TEXT,
			value_cents INTEGER NOT NULL,
			reason TEXT NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}
	}

	return &SettlementService{db: db, pricing: &PricingService{db: db}}
}

// seedPunchMonth creates a punch subscription worth 10000 cents per credit and
// one PAID attendance per given January day, all for trainer 7 / trainee 10.
func seedPunchMonth(t *testing.T, db *gorm.DB, days ...int) models.Subscription {
	t.Helper()

	initial := 10
	remaining := 10 - len(days)
	sub := models.Subscription{
		TraineeID:        10,
		PlanID:           1,
		Type:             models.PlanTypePunch,
		Status:           models.SubscriptionActive,
		PaidCents:        100000,
		StartsAt:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialCredits:   &initial,
		RemainingCredits: &remaining,
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("failed to seed subscription: %v", err)
	}

	for _, day := range days {
		record := models.AttendanceRecord{
			TrainerID:      7,
			TraineeID:      10,
			LocationID:     1,
			TrainedAt:      time.Date(2026, 1, day, 9, 0, 0, 0, time.UTC),
			PaymentStatus:  models.PaymentPaid,
			SubscriptionID: &sub.ID,
		}
		if err := db.Create(&record).Error; err != nil {
			t.Fatalf("failed to seed attendance: %v", err)
		}
	}
	return sub
}

func mustParsePeriod(t *testing.T, start, end string) (time.Time, time.Time) {
	t.Helper()
	s, e, err := ParsePeriod(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, e
}

func TestGenerateThenRegenerateIsIdempotent(t *testing.T) {
	svc := newSettlementHarness(t)
	seedPunchMonth(t, svc.db, 5, 12, 20)

	start, end := mustParsePeriod(t, "2026-01-01", "2026-01-31")
	settlement, lines, err := svc.Generate(context.Background(), start, end, "january")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if settlement.Status != models.SettlementDraft {
		t.Fatalf("new settlement status = %q, want DRAFT", settlement.Status)
	}
	if len(lines) != 1 || lines[0].TrainerID != 7 {
		t.Fatalf("expected a single line for trainer 7, got %+v", lines)
	}
	if lines[0].AmountCents != 30000 || lines[0].AttendanceCount != 3 {
		t.Fatalf("unexpected line %+v", lines[0])
	}

	first, err := svc.AllocationsAll(settlement.ID)
	if err != nil {
		t.Fatalf("AllocationsAll() error = %v", err)
	}

	_, relines, err := svc.Regenerate(context.Background(), settlement.ID)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	second, err := svc.AllocationsAll(settlement.ID)
	if err != nil {
		t.Fatalf("AllocationsAll() error = %v", err)
	}

	if len(second) != len(first) {
		t.Fatalf("regenerate changed allocation count from %d to %d", len(first), len(second))
	}
	values := make(map[uint]int64, len(first))
	for _, alloc := range first {
		values[alloc.AttendanceID] = alloc.ValueCents
	}
	for _, alloc := range second {
		if want, ok := values[alloc.AttendanceID]; !ok || alloc.ValueCents != want {
			t.Fatalf("regenerate changed attendance %d value to %d, want %d", alloc.AttendanceID, alloc.ValueCents, want)
		}
	}
	if len(relines) != 1 || relines[0].AmountCents != 30000 {
		t.Fatalf("regenerate changed lines: %+v", relines)
	}
}

// Records on the period's first and last calendar day belong to the period.
func TestGenerateCoversPeriodBoundaryDays(t *testing.T) {
	svc := newSettlementHarness(t)
	sub := seedPunchMonth(t, svc.db)

	for _, boundary := range []struct {
		day   string
		clock string
	}{
		{"2026-01-01", "00:00"},
		{"2026-01-31", "23:30"},
	} {
		date, err := utils.ParseDate(boundary.day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		trainedAt, err := utils.CombineDateTime(date, boundary.clock)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		record := models.AttendanceRecord{
			TrainerID:      7,
			TraineeID:      10,
			LocationID:     1,
			TrainedAt:      trainedAt,
			PaymentStatus:  models.PaymentPaid,
			SubscriptionID: &sub.ID,
		}
		if err := svc.db.Create(&record).Error; err != nil {
			t.Fatalf("failed to seed attendance: %v", err)
		}
	}

	start, end := mustParsePeriod(t, "2026-01-01", "2026-01-31")
	settlement, _, err := svc.Generate(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	allocations, err := svc.AllocationsAll(settlement.ID)
	if err != nil {
		t.Fatalf("AllocationsAll() error = %v", err)
	}
	if len(allocations) != 2 {
		t.Fatalf("expected one allocation per boundary record, got %d", len(allocations))
	}
}

func TestFinalizeIsTerminal(t *testing.T) {
	svc := newSettlementHarness(t)
	seedPunchMonth(t, svc.db, 5)

	start, end := mustParsePeriod(t, "2026-01-01", "2026-01-31")
	settlement, _, err := svc.Generate(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	finalized, err := svc.Finalize(settlement.ID)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if finalized.Status != models.SettlementFinal {
		t.Fatalf("status = %q, want FINAL", finalized.Status)
	}

	if _, err := svc.Finalize(settlement.ID); !errors.Is(err, ErrSettlementFinal) {
		t.Fatalf("second Finalize() error = %v, want ErrSettlementFinal", err)
	}
	if _, _, err := svc.Regenerate(context.Background(), settlement.ID); !errors.Is(err, ErrSettlementFinal) {
		t.Fatalf("Regenerate() after finalize error = %v, want ErrSettlementFinal", err)
	}
	if err := svc.Delete(settlement.ID); !errors.Is(err, ErrSettlementFinal) {
		t.Fatalf("Delete() after finalize error = %v, want ErrSettlementFinal", err)
	}
}

func TestAllocationsPagination(t *testing.T) {
	svc := newSettlementHarness(t)
	seedPunchMonth(t, svc.db, 3, 6, 9, 12, 15)

	start, end := mustParsePeriod(t, "2026-01-01", "2026-01-31")
	settlement, _, err := svc.Generate(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	seen := make(map[uint]bool)
	for offset := 0; offset < 5; offset += 2 {
		page, err := svc.Allocations(settlement.ID, nil, offset, 2)
		if err != nil {
			t.Fatalf("Allocations(offset=%d) error = %v", offset, err)
		}
		if page.Total != 5 {
			t.Fatalf("page total = %d, want 5", page.Total)
		}
		for _, row := range page.Rows {
			if seen[row.ID] {
				t.Fatalf("allocation %d appeared on more than one page", row.ID)
			}
			seen[row.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Fatalf("pages covered %d allocations, want 5", len(seen))
	}
}

func TestDeleteDraftRemovesLedger(t *testing.T) {
	svc := newSettlementHarness(t)
	seedPunchMonth(t, svc.db, 5, 12)

	start, end := mustParsePeriod(t, "2026-01-01", "2026-01-31")
	settlement, _, err := svc.Generate(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if err := svc.Delete(settlement.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := svc.Get(settlement.ID); !errors.Is(err, ErrSettlementNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrSettlementNotFound", err)
	}

	var allocations, lines int64
	svc.db.Model(&models.AllocationRow{}).Where("settlement_id = ?", settlement.ID).Count(&allocations)
	svc.db.Model(&models.SettlementLine{}).Where("settlement_id = ?", settlement.ID).Count(&lines)
	if allocations != 0 || lines != 0 {
		t.Fatalf("delete left %d allocations and %d lines behind", allocations, lines)
	}
}
