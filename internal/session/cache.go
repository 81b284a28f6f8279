package session

import (
	"context"
	"sync"
)

// MemoryCache keeps the referrer for the lifetime of the process only.
type MemoryCache struct {
	mu       sync.Mutex
	referrer string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) LoadReferrer(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.referrer, nil
}

func (c *MemoryCache) SaveReferrer(_ context.Context, referrer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.referrer = referrer
	return nil
}
