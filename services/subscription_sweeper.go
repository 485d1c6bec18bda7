package services

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"gymdesk_go/database"
	"gymdesk_go/models"
)

// SweepStatus reports the last completed expiry sweep
type SweepStatus struct {
	LastRunUnix *int64 `json:"last_run_unix,omitempty"`
	LastExpired int64  `json:"last_expired"`
}

var sweepState struct {
	sync.Mutex
	lastRun time.Time
	expired int64
}

// LastSweep returns the outcome of the most recent sweep, if one has run
func LastSweep() SweepStatus {
	sweepState.Lock()
	defer sweepState.Unlock()
	status := SweepStatus{LastExpired: sweepState.expired}
	if !sweepState.lastRun.IsZero() {
		unix := sweepState.lastRun.Unix()
		status.LastRunUnix = &unix
	}
	return status
}

// SubscriptionSweeper flips time-window subscriptions to EXPIRED once their
// window has passed. Pricing treats an expired window as settled, so the sweep
// keeps list views and the finality rule in agreement without touching money.
type SubscriptionSweeper struct {
	cron *cron.Cron
}

func NewSubscriptionSweeper() *SubscriptionSweeper {
	return &SubscriptionSweeper{cron: cron.New()}
}

// Start schedules the sweep shortly after midnight and runs one pass
// immediately so a restarted server catches up.
func (s *SubscriptionSweeper) Start() error {
	if _, err := s.cron.AddFunc("5 0 * * *", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.Sweep()
	return nil
}

// Stop halts the schedule. Running sweeps finish on their own.
func (s *SubscriptionSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep marks ACTIVE time subscriptions whose end has passed as EXPIRED
func (s *SubscriptionSweeper) Sweep() {
	if database.DB == nil {
		return
	}
	now := time.Now()
	result := database.DB.Model(&models.Subscription{}).
		Where("type = ? AND status = ? AND ends_at IS NOT NULL AND ends_at < ?",
			models.PlanTypeTime, models.SubscriptionActive, now).
		Update("status", models.SubscriptionExpired)
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to expire time subscriptions")
		return
	}

	sweepState.Lock()
	sweepState.lastRun = now
	sweepState.expired = result.RowsAffected
	sweepState.Unlock()

	if result.RowsAffected > 0 {
		logrus.WithField("expired", result.RowsAffected).Info("Expired time subscriptions")
	}
}
