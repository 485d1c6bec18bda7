package services

import (
	"fmt"
	"sort"
	"time"

	"gymdesk_go/models"
)

// AttendanceSessionItem is one attendance record inside a reconstructed session
type AttendanceSessionItem struct {
	ID             uint         `json:"id"`
	TraineeID      uint         `json:"trainee_id"`
	TrainerID      uint         `json:"trainer_id"`
	LocationID     uint         `json:"location_id"`
	TrainedAt      time.Time    `json:"trained_at"`
	PaymentStatus  string       `json:"payment_status"`
	SubscriptionID *uint        `json:"subscription_id"`
	Price          *PriceResult `json:"price,omitempty"`
}

// SessionTotals is the count/paid/unpaid partition of a session
type SessionTotals struct {
	Count  int `json:"count"`
	Paid   int `json:"paid"`
	Unpaid int `json:"unpaid"`
}

// AttendanceSession is a derived, non-persisted grouping of attendance records
// sharing trainer, location and time bucket on the same calendar day. The
// session key is reproducible purely from date, trainer, location and
// bucket-start time, so independently fetched lists join without extra
// round-trips.
type AttendanceSession struct {
	SessionKey    string                  `json:"session_key"`
	TrainerID     uint                    `json:"trainer_id"`
	LocationID    uint                    `json:"location_id"`
	Start         time.Time               `json:"start"`
	End           time.Time               `json:"end"`
	BucketMinutes int                     `json:"bucket_minutes"`
	Attendance    []AttendanceSessionItem `json:"attendance"`
	Totals        SessionTotals           `json:"totals"`
}

// SessionKey builds the deterministic composite key for a record's bucket.
// Format: YYYY-MM-DD|trainerID|locationID|HH:MM of the bucket start.
func SessionKey(trainedAt time.Time, trainerID, locationID uint, bucketMinutes int) string {
	start := bucketStart(trainedAt, bucketMinutes)
	return fmt.Sprintf("%s|%d|%d|%02d:%02d",
		start.Format("2006-01-02"), trainerID, locationID, start.Hour(), start.Minute())
}

// bucketStart floors trainedAt to its bucket boundary within the day
func bucketStart(trainedAt time.Time, bucketMinutes int) time.Time {
	minutes := trainedAt.Hour()*60 + trainedAt.Minute()
	startMinutes := (minutes / bucketMinutes) * bucketMinutes
	return time.Date(trainedAt.Year(), trainedAt.Month(), trainedAt.Day(),
		startMinutes/60, startMinutes%60, 0, 0, trainedAt.Location())
}

// BuildSessions groups attendance records into time-bucketed sessions.
// A trainer running back-to-back classes straddling a bucket boundary yields
// two sessions; bucket width is the caller's choice of granularity.
func BuildSessions(records []models.AttendanceRecord, prices map[uint]PriceResult, bucketMinutes int) ([]AttendanceSession, error) {
	if bucketMinutes <= 0 {
		return nil, fmt.Errorf("bucket width must be a positive number of minutes, got %d", bucketMinutes)
	}

	byKey := make(map[string]*AttendanceSession)
	for _, record := range records {
		key := SessionKey(record.TrainedAt, record.TrainerID, record.LocationID, bucketMinutes)
		session, ok := byKey[key]
		if !ok {
			start := bucketStart(record.TrainedAt, bucketMinutes)
			session = &AttendanceSession{
				SessionKey:    key,
				TrainerID:     record.TrainerID,
				LocationID:    record.LocationID,
				Start:         start,
				End:           start.Add(time.Duration(bucketMinutes) * time.Minute),
				BucketMinutes: bucketMinutes,
			}
			byKey[key] = session
		}

		item := AttendanceSessionItem{
			ID:             record.ID,
			TraineeID:      record.TraineeID,
			TrainerID:      record.TrainerID,
			LocationID:     record.LocationID,
			TrainedAt:      record.TrainedAt,
			PaymentStatus:  record.PaymentStatus,
			SubscriptionID: record.SubscriptionID,
		}
		if prices != nil {
			if price, ok := prices[record.ID]; ok {
				item.Price = &price
			}
		}
		session.Attendance = append(session.Attendance, item)

		session.Totals.Count++
		if record.PaymentStatus == models.PaymentPaid {
			session.Totals.Paid++
		} else {
			session.Totals.Unpaid++
		}
	}

	sessions := make([]AttendanceSession, 0, len(byKey))
	for _, session := range byKey {
		sort.Slice(session.Attendance, func(i, j int) bool {
			if session.Attendance[i].TrainedAt.Equal(session.Attendance[j].TrainedAt) {
				return session.Attendance[i].ID < session.Attendance[j].ID
			}
			return session.Attendance[i].TrainedAt.Before(session.Attendance[j].TrainedAt)
		})
		sessions = append(sessions, *session)
	}

	// Stable ordering: start time, then trainer, then location
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Start.Equal(sessions[j].Start) {
			return sessions[i].Start.Before(sessions[j].Start)
		}
		if sessions[i].TrainerID != sessions[j].TrainerID {
			return sessions[i].TrainerID < sessions[j].TrainerID
		}
		return sessions[i].LocationID < sessions[j].LocationID
	})

	return sessions, nil
}
