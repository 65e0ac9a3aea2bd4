// Package delivery remembers which webhook deliveries were already processed,
// so that a redelivered notification is acknowledged without being applied twice.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRetention covers the provider's retry schedule.
const DefaultRetention = 24 * time.Hour

// DeliveryRedis records delivery ids in Redis, shared by every process.
type DeliveryRedis struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewDeliveryRedis creates a new DeliveryRedis instance.
func NewDeliveryRedis(client *redis.Client, prefix string, retention time.Duration) *DeliveryRedis {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &DeliveryRedis{
		client:    client,
		prefix:    prefix,
		retention: retention,
	}
}

// deliveryKey returns the Redis key for a delivery id.
func (r *DeliveryRedis) deliveryKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Claim marks id as processed. It reports false if id was already claimed.
func (r *DeliveryRedis) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.deliveryKey(id), 1, r.retention).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery %s: %w", id, err)
	}
	return ok, nil
}

// Release forgets id so that a redelivery is processed again.
func (r *DeliveryRedis) Release(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.deliveryKey(id)).Err(); err != nil {
		return fmt.Errorf("release delivery %s: %w", id, err)
	}
	return nil
}
