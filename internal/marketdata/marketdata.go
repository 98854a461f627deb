// Package marketdata serves asset quotes through a TTL cache. Retrieval
// itself is behind the QuoteSource port; this package only decides when a
// cached quote is still fresh.
package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/internal/cache"
)

// Quote is one priced symbol at a point in time.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	AsOf     time.Time `json:"as_of"`
}

// QuoteSource fetches a live quote for a symbol.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

const quoteCacheSize = 256

// Service caches quotes from a source with a fixed TTL.
type Service struct {
	source QuoteSource
	quotes *cache.LRUCache[Quote]
}

// NewService wraps source with a TTL cache. A non-positive ttl defaults to
// five minutes.
func NewService(source QuoteSource, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		source: source,
		quotes: cache.NewLRUCache[Quote](quoteCacheSize, ttl),
	}
}

// WithClock overrides the cache's time source. Call before use.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.quotes.WithClock(now)
	return s
}

// GetQuote returns the cached quote for symbol, fetching from the source on
// a miss. Symbols are case-insensitive.
func (s *Service) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if key == "" {
		return Quote{}, fmt.Errorf("empty symbol")
	}

	if quote, found := s.quotes.Get(key); found {
		slog.DebugContext(ctx, "Quote cache hit", "symbol", key)
		return quote, nil
	}

	quote, err := s.source.FetchQuote(ctx, key)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote %s: %w", key, err)
	}
	quote.Symbol = key

	s.quotes.Set(key, quote)
	slog.DebugContext(ctx, "Quote cached", "symbol", key, "price", quote.Price)
	return quote, nil
}

// Invalidate drops a symbol from the cache.
func (s *Service) Invalidate(symbol string) {
	s.quotes.Delete(strings.ToUpper(strings.TrimSpace(symbol)))
}
