package aamp

import (
	"sync"

	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// deviceCache holds the hardware device listing fetched from the web
// API. It is never invalidated on its own: topology changes require an
// explicit refresh by the caller.
type deviceCache struct {
	mu      sync.RWMutex
	records []unofficial.DeviceRecord
}

func newDeviceCache() *deviceCache {
	return &deviceCache{}
}

// Get returns the cached records. ok is false while the cache is
// unpopulated; an empty fetch result counts as unpopulated so the next
// access tries again.
func (c *deviceCache) Get() ([]unofficial.DeviceRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.records) == 0 {
		return nil, false
	}
	return c.records, true
}

// Set stores a fetched listing.
func (c *deviceCache) Set(records []unofficial.DeviceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = records
}

// Clear empties the cache.
func (c *deviceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = nil
}
