package cache

import (
	"context"
	"sync"
	"time"

	"github.com/finsight/finsight/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryPriceCache is an in-process quote store for single-node runs and
// tests. Quotes are held by value under an RWMutex, so an upsert replaces the
// whole entry and a concurrent reader observes either the previous quote or
// the new one.
type MemoryPriceCache struct {
	mu     sync.RWMutex
	quotes map[string]model.PriceQuote
}

func NewMemoryPriceCache() *MemoryPriceCache {
	return &MemoryPriceCache{quotes: make(map[string]model.PriceQuote)}
}

func (c *MemoryPriceCache) UpsertPrice(_ context.Context, symbol string, price decimal.Decimal, observedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes[symbol] = model.PriceQuote{Symbol: symbol, Price: price, ObservedAt: observedAt}

	return nil
}

func (c *MemoryPriceCache) GetPrice(_ context.Context, symbol string) (model.PriceQuote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quote, ok := c.quotes[symbol]
	if !ok {
		return model.PriceQuote{}, ErrNotFound
	}

	return quote, nil
}

func (c *MemoryPriceCache) GetPrices(_ context.Context, symbols []string) (map[string]model.PriceQuote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quotes := make(map[string]model.PriceQuote, len(symbols))
	for _, symbol := range symbols {
		if quote, ok := c.quotes[symbol]; ok {
			quotes[symbol] = quote
		}
	}

	return quotes, nil
}
