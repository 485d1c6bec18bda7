package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gymdesk_go/database"
	"gymdesk_go/models"
)

var (
	// ErrAttendanceNotFound distinguishes missing attendance ids from bad input
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// AttendanceService registers attendance batches and reconstructs sessions
type AttendanceService struct {
	db      *gorm.DB
	pricing *PricingService
}

func NewAttendanceService() *AttendanceService {
	return &AttendanceService{db: database.DB, pricing: NewPricingService()}
}

// BatchResult reports the outcome for one trainee in a registration batch
type BatchResult struct {
	TraineeID      uint   `json:"trainee_id"`
	AttendanceID   uint   `json:"attendance_id"`
	PaymentStatus  string `json:"payment_status"`
	SubscriptionID *uint  `json:"subscription_id,omitempty"`
}

// CreateBatch registers one attendance record per trainee at the same
// trainer/location/time. Subscription consumption happens here and only here:
// a TIME subscription covering the moment wins, otherwise a PUNCH subscription
// with remaining credits is decremented (floor zero). Records with no usable
// subscription are stored UNPAID. The whole batch commits or rolls back as one.
func (as *AttendanceService) CreateBatch(trainerID uint, traineeIDs []uint, locationID uint, trainedAt time.Time) ([]BatchResult, error) {
	if len(traineeIDs) == 0 {
		return nil, fmt.Errorf("at least one trainee is required")
	}

	results := make([]BatchResult, 0, len(traineeIDs))
	err := as.db.Transaction(func(tx *gorm.DB) error {
		var trainer models.TrainerProfile
		if err := tx.First(&trainer, trainerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("trainer %d not found", trainerID)
			}
			return err
		}
		var location models.GymLocation
		if err := tx.First(&location, locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("gym location %d not found", locationID)
			}
			return err
		}

		for _, traineeID := range traineeIDs {
			var trainee models.TraineeProfile
			if err := tx.First(&trainee, traineeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("trainee %d not found", traineeID)
				}
				return err
			}

			record := models.AttendanceRecord{
				TrainerID:     trainerID,
				TraineeID:     traineeID,
				LocationID:    locationID,
				TrainedAt:     trainedAt,
				PaymentStatus: models.PaymentUnpaid,
			}

			sub, err := as.consumeSubscription(tx, traineeID, trainedAt)
			if err != nil {
				return err
			}
			if sub != nil {
				record.PaymentStatus = models.PaymentPaid
				record.SubscriptionID = &sub.ID
			}

			if err := tx.Create(&record).Error; err != nil {
				return err
			}

			results = append(results, BatchResult{
				TraineeID:      traineeID,
				AttendanceID:   record.ID,
				PaymentStatus:  record.PaymentStatus,
				SubscriptionID: record.SubscriptionID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// consumeSubscription picks and, for PUNCH, consumes the trainee's active
// subscription for the trained moment. Rows are locked so two simultaneous
// registrations cannot double-spend the same punch credit.
func (as *AttendanceService) consumeSubscription(tx *gorm.DB, traineeID uint, trainedAt time.Time) (*models.Subscription, error) {
	var subs []models.Subscription
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trainee_id = ? AND status = ?", traineeID, models.SubscriptionActive).
		Order("starts_at ASC, id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	for i := range subs {
		if subs[i].Type != models.PlanTypeTime {
			continue
		}
		if coversInstant(&subs[i], trainedAt) {
			return &subs[i], nil
		}
	}

	for i := range subs {
		if subs[i].Type != models.PlanTypePunch {
			continue
		}
		if subs[i].RemainingCredits == nil || *subs[i].RemainingCredits <= 0 {
			continue
		}
		remaining := *subs[i].RemainingCredits - 1
		if remaining < 0 {
			remaining = 0
		}
		if err := tx.Model(&subs[i]).Update("remaining_credits", remaining).Error; err != nil {
			return nil, err
		}
		subs[i].RemainingCredits = &remaining
		return &subs[i], nil
	}

	return nil, nil
}

// Delete hard-deletes an attendance record. A consumed punch credit is handed
// back so remaining credits keep matching actual usage.
func (as *AttendanceService) Delete(id uint) error {
	return as.db.Transaction(func(tx *gorm.DB) error {
		var record models.AttendanceRecord
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttendanceNotFound
			}
			return err
		}

		if record.SubscriptionID != nil {
			var sub models.Subscription
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, *record.SubscriptionID).Error
			if err == nil && sub.Type == models.PlanTypePunch && sub.RemainingCredits != nil && sub.InitialCredits != nil {
				restored := *sub.RemainingCredits + 1
				if restored > *sub.InitialCredits {
					restored = *sub.InitialCredits
				}
				if err := tx.Model(&sub).Update("remaining_credits", restored).Error; err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		return tx.Unscoped().Delete(&record).Error
	})
}

// GetByID loads a single attendance record
func (as *AttendanceService) GetByID(id uint) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := as.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &record, nil
}

// SessionFilters narrows the attendance set before bucketing
type SessionFilters struct {
	StartDate time.Time
	EndDate   time.Time // inclusive
	StartTime string    // HH:MM, optional
	EndTime   string    // HH:MM, optional
	TrainerID *uint
}

// SessionEntities are the denormalized lookup tables the client joins by id
type SessionEntities struct {
	Trainees  []EntityRef `json:"trainees"`
	Trainers  []EntityRef `json:"trainers"`
	Locations []EntityRef `json:"locations"`
}

// EntityRef is a compact id/name pair for client-side lookup
type EntityRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
}

// Sessions reconstructs bucketed sessions for the filters, prices every
// attendance item and collects the referenced entities so the client performs
// no merge logic of its own.
func (as *AttendanceService) Sessions(filters SessionFilters, bucketMinutes int) ([]AttendanceSession, *SessionEntities, error) {
	if bucketMinutes <= 0 {
		return nil, nil, fmt.Errorf("bucket width must be a positive number of minutes, got %d", bucketMinutes)
	}

	endExclusive := filters.EndDate.AddDate(0, 0, 1)
	query := as.db.
		Where("trained_at >= ? AND trained_at < ?", filters.StartDate, endExclusive)
	if filters.TrainerID != nil {
		query = query.Where("trainer_id = ?", *filters.TrainerID)
	}

	var records []models.AttendanceRecord
	if err := query.Order("trained_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, nil, err
	}

	records = filterByTimeOfDay(records, filters.StartTime, filters.EndTime)

	prices, err := as.pricing.ResolveForRecords(as.db, records, time.Now())
	if err != nil {
		return nil, nil, err
	}

	sessions, err := BuildSessions(records, prices, bucketMinutes)
	if err != nil {
		return nil, nil, err
	}

	entities, err := as.collectEntities(records)
	if err != nil {
		return nil, nil, err
	}
	return sessions, entities, nil
}

// filterByTimeOfDay keeps records whose HH:MM falls inside the optional window
func filterByTimeOfDay(records []models.AttendanceRecord, startTime, endTime string) []models.AttendanceRecord {
	if startTime == "" && endTime == "" {
		return records
	}

	inWindow := func(t time.Time) bool {
		hm := fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
		if startTime != "" && hm < startTime {
			return false
		}
		if endTime != "" && hm > endTime {
			return false
		}
		return true
	}

	filtered := records[:0]
	for _, record := range records {
		if inWindow(record.TrainedAt) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// collectEntities loads the trainer/trainee/location rows referenced by the
// records as compact lookup tables
func (as *AttendanceService) collectEntities(records []models.AttendanceRecord) (*SessionEntities, error) {
	trainerIDs := map[uint]bool{}
	traineeIDs := map[uint]bool{}
	locationIDs := map[uint]bool{}
	for _, record := range records {
		trainerIDs[record.TrainerID] = true
		traineeIDs[record.TraineeID] = true
		locationIDs[record.LocationID] = true
	}

	entities := &SessionEntities{
		Trainees:  []EntityRef{},
		Trainers:  []EntityRef{},
		Locations: []EntityRef{},
	}

	if len(trainerIDs) > 0 {
		var trainers []models.TrainerProfile
		if err := as.db.Where("id IN ?", keys(trainerIDs)).Find(&trainers).Error; err != nil {
			return nil, err
		}
		for _, trainer := range trainers {
			entities.Trainers = append(entities.Trainers, EntityRef{ID: trainer.ID, Name: trainer.Name, Nickname: trainer.Nickname})
		}
	}
	if len(traineeIDs) > 0 {
		var trainees []models.TraineeProfile
		if err := as.db.Where("id IN ?", keys(traineeIDs)).Find(&trainees).Error; err != nil {
			return nil, err
		}
		for _, trainee := range trainees {
			entities.Trainees = append(entities.Trainees, EntityRef{ID: trainee.ID, Name: trainee.Name, Nickname: trainee.Nickname})
		}
	}
	if len(locationIDs) > 0 {
		var locations []models.GymLocation
		if err := as.db.Where("id IN ?", keys(locationIDs)).Find(&locations).Error; err != nil {
			return nil, err
		}
		for _, location := range locations {
			entities.Locations = append(entities.Locations, EntityRef{ID: location.ID, Name: location.Name})
		}
	}

	sort.Slice(entities.Trainers, func(i, j int) bool { return entities.Trainers[i].ID < entities.Trainers[j].ID })
	sort.Slice(entities.Trainees, func(i, j int) bool { return entities.Trainees[i].ID < entities.Trainees[j].ID })
	sort.Slice(entities.Locations, func(i, j int) bool { return entities.Locations[i].ID < entities.Locations[j].ID })
	return entities, nil
}

func keys(m map[uint]bool) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
