package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platebite/backend/internal/models"
)

const loyaltyEventQueue = "loyalty_events"

// LoyaltyEvent is pushed to Redis after every committed mutation so downstream
// consumers (notifications, analytics) can react without touching the ledger.
type LoyaltyEvent struct {
	Type       string             `json:"type"` // POINTS_ADDED or POINTS_REDEEMED
	UserID     string             `json:"userId"`
	AccountID  string             `json:"accountId"`
	Points     int64              `json:"points"`
	RewardType string             `json:"rewardType,omitempty"`
	Tier       models.LoyaltyTier `json:"tier"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// EventPublisher queues loyalty events onto a Redis list. Publishing happens
// after the database commit; a lost event never implies a lost ledger entry.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

// Publish enqueues the event. Best effort: failures are logged, not surfaced,
// because the mutation has already committed.
func (p *EventPublisher) Publish(ctx context.Context, event LoyaltyEvent) {
	if p.redis == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal loyalty event: %v", err)
		return
	}
	if err := p.redis.RPush(ctx, loyaltyEventQueue, data).Err(); err != nil {
		log.Printf("[EVENTS] Failed to queue loyalty event for user %s: %v", event.UserID, err)
	}
}
