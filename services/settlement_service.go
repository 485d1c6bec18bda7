package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/models"
)

var (
	// ErrSettlementNotFound distinguishes missing ids from bad input
	ErrSettlementNotFound = errors.New("settlement not found")
	// ErrSettlementFinal marks state-conflict operations on a FINAL settlement
	ErrSettlementFinal = errors.New("settlement is FINAL and cannot be modified")
)

// SettlementService generates, finalizes and serves settlements. All write
// paths lock the settlement row inside a transaction, so Generate and Finalize
// on the same settlement serialize and readers only ever observe a complete
// generation, never a partial one.
type SettlementService struct {
	db      *gorm.DB
	pricing *PricingService
}

func NewSettlementService() *SettlementService {
	return &SettlementService{db: database.DB, pricing: NewPricingService()}
}

// ParsePeriod validates an ISO-8601 YYYY-MM-DD period pair. End is inclusive.
// Parsed in UTC so the boundaries live in the same location attendance
// timestamps are built in; a local-zone parse would shift boundary-day records
// out of their own period.
func ParsePeriod(periodStart, periodEnd string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", periodStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid periodStart %q: expected YYYY-MM-DD", periodStart)
	}
	end, err := time.Parse("2006-01-02", periodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid periodEnd %q: expected YYYY-MM-DD", periodEnd)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("periodEnd %s is before periodStart %s", periodEnd, periodStart)
	}
	return start, end, nil
}

// List returns settlements, newest first
func (ss *SettlementService) List() ([]models.Settlement, error) {
	var settlements []models.Settlement
	if err := ss.db.Order("period_start DESC, id DESC").Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// Get returns a settlement with its lines
func (ss *SettlementService) Get(id uint) (*models.Settlement, []models.SettlementLine, error) {
	var settlement models.Settlement
	if err := ss.db.First(&settlement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSettlementNotFound
		}
		return nil, nil, err
	}
	lines, err := ss.lines(ss.db, id)
	if err != nil {
		return nil, nil, err
	}
	return &settlement, lines, nil
}

// Generate creates a DRAFT settlement over the period and populates its
// allocations and lines. The whole generation runs in one transaction bounded
// by the configured timeout; on expiry or error the settlement is rolled back
// entirely.
func (ss *SettlementService) Generate(ctx context.Context, periodStart, periodEnd time.Time, notes string) (*models.Settlement, []models.SettlementLine, error) {
	ctx, cancel := context.WithTimeout(ctx, config.AppConfig.SettlementGenerateTimeout)
	defer cancel()

	settlement := models.Settlement{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GeneratedAt: time.Now(),
		Status:      models.SettlementDraft,
		Notes:       notes,
	}

	var lines []models.SettlementLine
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&settlement).Error; err != nil {
			return err
		}
		var err error
		lines, err = ss.populate(tx, &settlement)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &settlement, lines, nil
}

// Regenerate replaces a DRAFT settlement's allocations and lines over its
// stored period. Serialized against concurrent Generate/Finalize by the row
// lock; the swap is all-or-nothing.
func (ss *SettlementService) Regenerate(ctx context.Context, id uint) (*models.Settlement, []models.SettlementLine, error) {
	ctx, cancel := context.WithTimeout(ctx, config.AppConfig.SettlementGenerateTimeout)
	defer cancel()

	var settlement models.Settlement
	var lines []models.SettlementLine
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSettlement(tx, id, &settlement); err != nil {
			return err
		}
		if settlement.Status != models.SettlementDraft {
			return ErrSettlementFinal
		}
		settlement.GeneratedAt = time.Now()
		if err := tx.Model(&settlement).Update("generated_at", settlement.GeneratedAt).Error; err != nil {
			return err
		}
		var err error
		lines, err = ss.populate(tx, &settlement)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &settlement, lines, nil
}

// Finalize transitions DRAFT -> FINAL. The transition is terminal: a second
// finalize fails with a state conflict instead of silently succeeding.
func (ss *SettlementService) Finalize(id uint) (*models.Settlement, error) {
	var settlement models.Settlement
	err := ss.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSettlement(tx, id, &settlement); err != nil {
			return err
		}
		if settlement.Status != models.SettlementDraft {
			return ErrSettlementFinal
		}
		settlement.Status = models.SettlementFinal
		return tx.Model(&settlement).Update("status", models.SettlementFinal).Error
	})
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// Delete removes a DRAFT settlement together with its lines and allocations
// in one transaction. FINAL settlements cannot be deleted.
func (ss *SettlementService) Delete(id uint) error {
	return ss.db.Transaction(func(tx *gorm.DB) error {
		var settlement models.Settlement
		if err := lockSettlement(tx, id, &settlement); err != nil {
			return err
		}
		if settlement.Status != models.SettlementDraft {
			return ErrSettlementFinal
		}
		if err := tx.Unscoped().Where("settlement_id = ?", id).Delete(&models.AllocationRow{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("settlement_id = ?", id).Delete(&models.SettlementLine{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&settlement).Error
	})
}

// AllocationPage is the paginated allocation ledger response
type AllocationPage struct {
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Rows   []models.AllocationRow `json:"rows"`
}

// Allocations serves the settlement's allocation ledger, optionally filtered
// by trainer. Runs in a read transaction so a concurrent regenerate can never
// produce a mixed old/new page.
func (ss *SettlementService) Allocations(id uint, trainerID *uint, offset, limit int) (*AllocationPage, error) {
	if limit <= 0 {
		limit = config.AppConfig.AllocationPageLimit
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	page := &AllocationPage{Limit: limit, Offset: offset}
	err := ss.db.Transaction(func(tx *gorm.DB) error {
		var settlement models.Settlement
		if err := tx.First(&settlement, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettlementNotFound
			}
			return err
		}

		query := tx.Model(&models.AllocationRow{}).Where("settlement_id = ?", id)
		if trainerID != nil {
			query = query.Where("trainer_id = ?", *trainerID)
		}
		if err := query.Count(&page.Total).Error; err != nil {
			return err
		}
		return query.
			Preload("Attendance").
			Order("id ASC").
			Offset(offset).
			Limit(limit).
			Find(&page.Rows).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// AllocationsAll returns every allocation row of a settlement, used by exports
func (ss *SettlementService) AllocationsAll(id uint) ([]models.AllocationRow, error) {
	var settlement models.Settlement
	if err := ss.db.First(&settlement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	var rows []models.AllocationRow
	if err := ss.db.Where("settlement_id = ?", id).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// lockSettlement loads the settlement under FOR UPDATE so concurrent writers
// on the same id serialize. SQLite has no FOR UPDATE; its single-writer
// transaction lock gives the same serialization there.
func lockSettlement(tx *gorm.DB, id uint, out *models.Settlement) error {
	query := tx
	if tx.Dialector.Name() == "mysql" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSettlementNotFound
	}
	return err
}

// populate replaces the settlement's allocations and lines from the attendance
// in its period. Caller holds the row lock inside an open transaction.
func (ss *SettlementService) populate(tx *gorm.DB, settlement *models.Settlement) ([]models.SettlementLine, error) {
	if err := tx.Unscoped().Where("settlement_id = ?", settlement.ID).Delete(&models.AllocationRow{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Unscoped().Where("settlement_id = ?", settlement.ID).Delete(&models.SettlementLine{}).Error; err != nil {
		return nil, err
	}

	// Period end is an inclusive calendar date
	periodEndExclusive := settlement.PeriodEnd.AddDate(0, 0, 1)
	var records []models.AttendanceRecord
	err := tx.
		Where("trained_at >= ? AND trained_at < ?", settlement.PeriodStart, periodEndExclusive).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	prices, err := ss.pricing.ResolveForRecords(tx, records, settlement.GeneratedAt)
	if err != nil {
		return nil, err
	}

	allocations := BuildAllocations(settlement.ID, records, prices)
	if len(allocations) > 0 {
		if err := tx.CreateInBatches(allocations, 200).Error; err != nil {
			return nil, err
		}
	}

	lines := RollupLines(settlement.ID, allocations)
	if len(lines) > 0 {
		if err := tx.Create(&lines).Error; err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// BuildAllocations emits exactly one allocation row per attendance record
func BuildAllocations(settlementID uint, records []models.AttendanceRecord, prices map[uint]PriceResult) []models.AllocationRow {
	allocations := make([]models.AllocationRow, 0, len(records))
	for _, record := range records {
		price := prices[record.ID]
		allocations = append(allocations, models.AllocationRow{
			SettlementID:     settlementID,
			AttendanceID:     record.ID,
			TrainerID:        record.TrainerID,
			SubscriptionID:   price.SubscriptionID,
			SubscriptionType: price.SubscriptionType,
			ValueCents:       price.PriceCents,
			Reason:           price.Reason,
		})
	}
	return allocations
}

// RollupLines derives one settlement line per distinct trainer from the
// allocation rows. By construction the sum of line amounts equals the sum of
// allocation values.
func RollupLines(settlementID uint, allocations []models.AllocationRow) []models.SettlementLine {
	byTrainer := make(map[uint]*models.SettlementLine)
	for _, alloc := range allocations {
		line, ok := byTrainer[alloc.TrainerID]
		if !ok {
			line = &models.SettlementLine{
				SettlementID: settlementID,
				TrainerID:    alloc.TrainerID,
			}
			byTrainer[alloc.TrainerID] = line
		}
		line.AmountCents += alloc.ValueCents
		line.AttendanceCount++
		switch alloc.Reason {
		case models.ReasonPunchCredit:
			line.PunchCents += alloc.ValueCents
		case models.ReasonTimeProrata:
			line.TimeCents += alloc.ValueCents
		case models.ReasonUnpaid:
			line.UnpaidAttendanceCount++
		}
	}

	lines := make([]models.SettlementLine, 0, len(byTrainer))
	for _, line := range byTrainer {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].TrainerID < lines[j].TrainerID })
	return lines
}

// lines loads the stored lines for a settlement ordered by trainer
func (ss *SettlementService) lines(tx *gorm.DB, settlementID uint) ([]models.SettlementLine, error) {
	var lines []models.SettlementLine
	err := tx.Where("settlement_id = ?", settlementID).Order("trainer_id ASC").Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
