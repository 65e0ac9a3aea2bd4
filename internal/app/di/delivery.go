package di

import (
	"github.com/redis/go-redis/v9"

	"course_backend/internal/feature/user/transport/handler"
	"course_backend/internal/platform/delivery"
)

// NewDeliveryLog creates the webhook delivery log.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewDeliveryLog(rdb *redis.Client) handler.DeliveryLog {
	if rdb != nil {
		return delivery.NewDeliveryRedis(rdb, "course:webhook", delivery.DefaultRetention)
	}
	return delivery.NewDeliveryMemory(delivery.DefaultRetention)
}
