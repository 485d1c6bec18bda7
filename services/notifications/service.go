package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gymdesk_go/config"
	"gymdesk_go/database"
	"gymdesk_go/models"
	"gymdesk_go/utils"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Queue item structure stored in Redis. Kept minimal to reduce payload size;
// one payload can fan out to many accounts. If Redis is down the service
// falls back to a direct DB insert, the DB remains the source of truth.

type queuedNotification struct {
	AccountIDs []uint    `json:"account_ids"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

const redisListKey = "notifications:queue"

// Service exposes notification creation with optional Redis queue.
// If Redis is disabled or unavailable, performs direct DB insert.

type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	useRedis bool
	wsHub    WSHub
}

// WSHub interface for WebSocket broadcasting
type WSHub interface {
	BroadcastToAccount(accountID uint, message interface{})
}

// defaultHub allows services created in different parts of the app to
// broadcast over the same WebSocket hub without manually wiring each instance.
var defaultHub WSHub

// SetDefaultWSHub sets the package-level default WebSocket hub used by new Service instances.
func SetDefaultWSHub(h WSHub) {
	defaultHub = h
}

func NewService() *Service {
	return &Service{
		db:       database.GetDB(),
		redis:    database.GetRedisClient(),
		useRedis: config.AppConfig != nil && config.AppConfig.UseRedisNotifications && database.GetRedisClient() != nil,
		wsHub:    defaultHub,
	}
}

// SetWebSocketHub sets the WebSocket hub for real-time notifications
func (s *Service) SetWebSocketHub(hub WSHub) {
	s.wsHub = hub
}

// Queued builds a minimal queuedNotification payload
func Queued(title, message, typ string) queuedNotification {
	return queuedNotification{Title: title, Message: message, Type: typ}
}

// EnqueueOrCreate stores notifications using the Redis queue if enabled, else direct insert.
func (s *Service) EnqueueOrCreate(accountIDs []uint, n queuedNotification) error {
	if len(accountIDs) == 0 {
		return errors.New("no account ids")
	}
	n.AccountIDs = accountIDs
	n.CreatedAt = time.Now().UTC()

	if s.useRedis {
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err = s.redis.RPush(context.Background(), redisListKey, b).Err(); err == nil {
			return nil // queued successfully
		}
		log.Printf("[notif] Redis queue failed, falling back to direct insert: %v", err)
	}

	return s.createDirect(accountIDs, n)
}

// createDirect writes directly to DB (used by worker or fallback).
func (s *Service) createDirect(accountIDs []uint, n queuedNotification) error {
	if len(accountIDs) == 0 {
		return nil
	}
	notifs := make([]models.Notification, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		notifs = append(notifs, models.Notification{
			AccountID: accountID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Read:      false,
		})
	}

	if err := s.db.Create(&notifs).Error; err != nil {
		return err
	}

	if s.wsHub != nil {
		for _, notif := range notifs {
			s.db.Preload("Account").Preload("Account.TrainerProfile").Preload("Account.TraineeProfile").First(&notif, notif.ID)

			dto := utils.ToNotificationDTO(notif)
			wsMessage := map[string]interface{}{
				"type": "notification",
				"data": dto,
			}
			s.wsHub.BroadcastToAccount(notif.AccountID, wsMessage)
		}
	}

	return nil
}

// StartWorker starts a background worker polling the Redis queue and flushing to DB
func (s *Service) StartWorker(stop <-chan struct{}) {
	if !s.useRedis {
		log.Println("[notif] Redis notifications disabled; worker not started")
		return
	}
	go func() {
		log.Println("[notif] Redis notification worker started")
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		ctx := context.Background()
		batchSize := 200
		for {
			select {
			case <-stop:
				log.Println("[notif] Worker stopping")
				return
			case <-ticker.C:
				s.flushBatch(ctx, batchSize)
			}
		}
	}()
}

// flushBatch polls the redis queue and processes notifications in batches.
func (s *Service) flushBatch(ctx context.Context, batchSize int) {
	if s.redis == nil {
		return
	}
	// LRange + LTrim keeps this safe for moderate concurrency
	for i := 0; i < 5; i++ { // up to 5 sub-batches per tick
		vals, err := s.redis.LRange(ctx, redisListKey, 0, int64(batchSize-1)).Result()
		if err != nil || len(vals) == 0 {
			return
		}
		if err = s.redis.LTrim(ctx, redisListKey, int64(len(vals)), -1).Err(); err != nil {
			log.Printf("[notif] LTrim failed: %v", err)
		}
		for _, raw := range vals {
			var q queuedNotification
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				continue
			}
			if err := s.createDirect(q.AccountIDs, q); err != nil {
				log.Printf("[notif] DB insert failed (retry later?): %v", err)
			}
		}
		if len(vals) < batchSize {
			return
		}
	}
}
