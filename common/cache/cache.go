package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
)

var (
	cache *ristretto.Cache[string, any]
	ttl   time.Duration
	mu    sync.Mutex
)

func newCache(numCounters, maxCost int64) (*ristretto.Cache[string, any], error) {
	return ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		OnReject: func(item *ristretto.Item[any]) {
			log.Warnf("Cache item rejected: key=%d, value=%v", item.Key, item.Value)
		},
	})
}

// Init (re)creates the process wide cache. Callers that never call Init get a
// default sized cache on first use.
func Init(numCounters, maxCost int64, itemTTL time.Duration) error {
	c, err := newCache(numCounters, maxCost)
	if err != nil {
		return fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if cache != nil {
		cache.Close()
	}
	cache = c
	ttl = itemTTL
	return nil
}

func instance() *ristretto.Cache[string, any] {
	mu.Lock()
	defer mu.Unlock()
	if cache == nil {
		c, err := newCache(1e6, 1e7)
		if err != nil {
			log.Fatalf("failed to create ristretto cache: %v", err)
		}
		cache = c
	}
	return cache
}

// Set stores value with a cost of one and waits until it is visible to Get.
func Set(key string, value any) error {
	c := instance()
	if !c.SetWithTTL(key, value, 1, ttl) {
		return fmt.Errorf("failed to set value in cache")
	}
	c.Wait()
	return nil
}

func Get[T any](key string) (T, bool) {
	var zero T
	v, ok := instance().Get(key)
	if !ok {
		return zero, false
	}
	vT, ok := v.(T)
	if !ok {
		return zero, false
	}
	return vT, true
}
