package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trove/internal/models"

	"github.com/redis/go-redis/v9"
)

const ItemKeyPrefix = "item:%d"

const ItemTTL = 10 * time.Minute

func ItemKey(itemID uint) string {
	return fmt.Sprintf(ItemKeyPrefix, itemID)
}

// Inventory caches item reads. A nil client (Redis unavailable) disables
// every operation, so callers never need to branch on availability.
type Inventory struct {
	client *redis.Client
}

// NewInventory returns an Inventory backed by the given client. client may be
// nil.
func NewInventory(client *redis.Client) *Inventory {
	return &Inventory{client: client}
}

// GetItem returns a cached item and whether the lookup hit.
func (i *Inventory) GetItem(ctx context.Context, itemID uint) (*models.Item, bool) {
	if i == nil || i.client == nil {
		return nil, false
	}
	payload, err := i.client.Get(ctx, ItemKey(itemID)).Bytes()
	if err != nil {
		return nil, false
	}
	var item models.Item
	if err := json.Unmarshal(payload, &item); err != nil {
		i.client.Del(ctx, ItemKey(itemID))
		return nil, false
	}
	return &item, true
}

// SetItem caches an item for ItemTTL. Failures are ignored; the cache is an
// optimization only.
func (i *Inventory) SetItem(ctx context.Context, item *models.Item) {
	if i == nil || i.client == nil || item == nil {
		return
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return
	}
	i.client.Set(ctx, ItemKey(item.ID), payload, ItemTTL)
}

// InvalidateItem drops an item from the cache after a write.
func (i *Inventory) InvalidateItem(ctx context.Context, itemID uint) {
	if i == nil || i.client == nil {
		return
	}
	i.client.Del(ctx, ItemKey(itemID))
}
