package delivery

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DeliveryMemory records delivery ids in process memory.
type DeliveryMemory struct {
	seen *gocache.Cache
}

// NewDeliveryMemory creates a DeliveryMemory.
func NewDeliveryMemory(retention time.Duration) *DeliveryMemory {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &DeliveryMemory{seen: gocache.New(retention, retention)}
}

// Claim marks id as processed. It reports false if id was already claimed.
func (m *DeliveryMemory) Claim(_ context.Context, id string) (bool, error) {
	// Add fails if the key exists
	return m.seen.Add(id, struct{}{}, gocache.DefaultExpiration) == nil, nil
}

// Release forgets id.
func (m *DeliveryMemory) Release(_ context.Context, id string) error {
	m.seen.Delete(id)
	return nil
}
