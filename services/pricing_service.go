package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"gymdesk_go/database"
	"gymdesk_go/models"
)

// PriceResult is the monetary attribution computed for one attendance record.
// IsFinal=false means the value may still move (open TIME pro-rata window) and
// clients must not display it as settled.
type PriceResult struct {
	PriceCents       int64  `json:"price_cents"`
	Reason           string `json:"calculation"`
	SubscriptionType string `json:"subscription_type,omitempty"`
	SubscriptionID   *uint  `json:"subscription_id,omitempty"`
	IsFinal          bool   `json:"is_final"`
}

// PricingService resolves attendance records against subscription history
type PricingService struct {
	db *gorm.DB
}

func NewPricingService() *PricingService {
	return &PricingService{db: database.DB}
}

// ResolvePrice determines the monetary value of a single attendance record.
// Resolution is deterministic and idempotent: for unchanged subscription data
// two calls yield identical output, which is what makes DRAFT settlements safe
// to regenerate.
//
// The stamped subscription on the record always wins so that re-running a
// settlement reproduces historical results even after the trainee's remaining
// credits changed.
func ResolvePrice(record models.AttendanceRecord, subscriptions []models.Subscription, billableCounts map[uint]int, now time.Time) PriceResult {
	// An unpaid record is definitively zero, not pending.
	if record.PaymentStatus == models.PaymentUnpaid {
		return PriceResult{PriceCents: 0, Reason: models.ReasonUnpaid, IsFinal: true}
	}

	sub := selectSubscription(record, subscriptions)
	if sub == nil {
		return PriceResult{PriceCents: 0, Reason: models.ReasonUnpaid, IsFinal: true}
	}

	switch sub.Type {
	case models.PlanTypePunch:
		if sub.InitialCredits == nil || *sub.InitialCredits <= 0 {
			return PriceResult{PriceCents: 0, Reason: models.ReasonUnpaid, IsFinal: true}
		}
		return PriceResult{
			PriceCents:       divideRounded(sub.PaidCents, *sub.InitialCredits),
			Reason:           models.ReasonPunchCredit,
			SubscriptionType: models.PlanTypePunch,
			SubscriptionID:   &sub.ID,
			IsFinal:          true,
		}
	case models.PlanTypeTime:
		billable := billableCounts[sub.ID]
		if billable < 1 {
			billable = 1
		}
		return PriceResult{
			PriceCents:       divideRounded(sub.PaidCents, billable),
			Reason:           models.ReasonTimeProrata,
			SubscriptionType: models.PlanTypeTime,
			SubscriptionID:   &sub.ID,
			IsFinal:          timeWindowClosed(sub, now),
		}
	}

	return PriceResult{PriceCents: 0, Reason: models.ReasonUnpaid, IsFinal: true}
}

// selectSubscription picks the subscription active for the record. The stamped
// subscription is preferred; otherwise a TIME subscription whose window
// contains trainedAt, then any PUNCH subscription with remaining credits.
// Candidates are ordered by starts_at then id for deterministic output.
func selectSubscription(record models.AttendanceRecord, subscriptions []models.Subscription) *models.Subscription {
	if record.SubscriptionID != nil {
		for i := range subscriptions {
			if subscriptions[i].ID == *record.SubscriptionID && subscriptions[i].TraineeID == record.TraineeID {
				return &subscriptions[i]
			}
		}
	}

	candidates := make([]*models.Subscription, 0, len(subscriptions))
	for i := range subscriptions {
		if subscriptions[i].TraineeID == record.TraineeID {
			candidates = append(candidates, &subscriptions[i])
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].StartsAt.Equal(candidates[j].StartsAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].StartsAt.Before(candidates[j].StartsAt)
	})

	for _, sub := range candidates {
		if sub.Type != models.PlanTypeTime || sub.Status == models.SubscriptionCancelled {
			continue
		}
		if coversInstant(sub, record.TrainedAt) {
			return sub
		}
	}

	for _, sub := range candidates {
		if sub.Type != models.PlanTypePunch || sub.Status == models.SubscriptionCancelled {
			continue
		}
		if sub.RemainingCredits != nil && *sub.RemainingCredits > 0 {
			return sub
		}
	}

	return nil
}

// coversInstant reports whether a TIME subscription window contains t (inclusive bounds)
func coversInstant(sub *models.Subscription, t time.Time) bool {
	if t.Before(sub.StartsAt) {
		return false
	}
	if sub.EndsAt == nil {
		return true
	}
	return !t.After(*sub.EndsAt)
}

// timeWindowClosed implements the conservative finality rule for TIME
// pro-rata pricing: the value is final once the subscription's window has
// ended, since pro-rata depends on total attendance across the full window.
func timeWindowClosed(sub *models.Subscription, now time.Time) bool {
	if sub.Status == models.SubscriptionExpired || sub.Status == models.SubscriptionCancelled {
		return true
	}
	return sub.EndsAt != nil && sub.EndsAt.Before(now)
}

// divideRounded divides cents by a count with half-up rounding, staying in
// integer arithmetic so no float error can leak into money values.
func divideRounded(cents int64, count int) int64 {
	if count <= 0 {
		return 0
	}
	n := int64(count)
	if cents >= 0 {
		return (cents + n/2) / n
	}
	return -((-cents + n/2) / n)
}

// ResolveForRecords prices a batch of attendance records in one pass, loading
// each trainee's subscription history and per-subscription billable counts
// once. Used by both the sessions endpoint and settlement generation.
func (ps *PricingService) ResolveForRecords(tx *gorm.DB, records []models.AttendanceRecord, now time.Time) (map[uint]PriceResult, error) {
	if tx == nil {
		tx = ps.db
	}
	if len(records) == 0 {
		return map[uint]PriceResult{}, nil
	}

	traineeIDs := make([]uint, 0, len(records))
	seen := make(map[uint]bool, len(records))
	for _, r := range records {
		if !seen[r.TraineeID] {
			seen[r.TraineeID] = true
			traineeIDs = append(traineeIDs, r.TraineeID)
		}
	}

	var subscriptions []models.Subscription
	if err := tx.Where("trainee_id IN ?", traineeIDs).Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	billableCounts, err := ps.billableCounts(tx, subscriptions)
	if err != nil {
		return nil, err
	}

	results := make(map[uint]PriceResult, len(records))
	for _, record := range records {
		results[record.ID] = ResolvePrice(record, subscriptions, billableCounts, now)
	}
	return results, nil
}

// billableCounts counts PAID attendance stamped against each TIME subscription.
// The divisor of the pro-rata share is the subscription's total usage across
// its full window, not just the queried period.
func (ps *PricingService) billableCounts(tx *gorm.DB, subscriptions []models.Subscription) (map[uint]int, error) {
	timeSubIDs := make([]uint, 0, len(subscriptions))
	for _, sub := range subscriptions {
		if sub.Type == models.PlanTypeTime {
			timeSubIDs = append(timeSubIDs, sub.ID)
		}
	}

	counts := make(map[uint]int, len(timeSubIDs))
	if len(timeSubIDs) == 0 {
		return counts, nil
	}

	type subCount struct {
		SubscriptionID uint
		Total          int
	}
	var rows []subCount
	err := tx.Model(&models.AttendanceRecord{}).
		Select("subscription_id, COUNT(*) as total").
		Where("subscription_id IN ? AND payment_status = ?", timeSubIDs, models.PaymentPaid).
		Group("subscription_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.SubscriptionID] = row.Total
	}
	return counts, nil
}
