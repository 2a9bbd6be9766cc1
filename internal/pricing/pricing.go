package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sol-volume-bot/internal/api"
	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
)

const (
	coingeckoURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"
	cacheKey     = "price:sol:usd"
)

// CoinGecko serves SOL/USD spot prices, optionally fronted by a Redis cache
// so session summaries do not hammer the free tier.
type CoinGecko struct {
	client   *api.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

var _ interfaces.PriceSource = (*CoinGecko)(nil)

// New builds a price source. rdb may be nil, in which case every call goes
// to the upstream API.
func New(rdb *redis.Client, cacheTTL time.Duration) *CoinGecko {
	return &CoinGecko{
		client:   api.NewClient(api.WithTimeout(15 * time.Second)),
		redis:    rdb,
		cacheTTL: cacheTTL,
	}
}

type priceResponse struct {
	Solana struct {
		USD float64 `json:"usd"`
	} `json:"solana"`
}

// SolUSD returns the current SOL price in USD.
func (cg *CoinGecko) SolUSD(ctx context.Context) (float64, error) {
	if cg.redis != nil {
		if cached, err := cg.redis.Get(ctx, cacheKey).Result(); err == nil {
			if price, err := strconv.ParseFloat(cached, 64); err == nil {
				return price, nil
			}
		}
	}

	resp, err := cg.client.GET(ctx, coingeckoURL)
	if err != nil {
		return 0, fmt.Errorf("fetch SOL price: %w", err)
	}
	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("fetch SOL price: status %d", resp.StatusCode)
	}
	var parsed priceResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return 0, fmt.Errorf("parse SOL price: %w", err)
	}
	if parsed.Solana.USD <= 0 {
		return 0, fmt.Errorf("upstream returned non-positive SOL price %f", parsed.Solana.USD)
	}

	if cg.redis != nil {
		if err := cg.redis.Set(ctx, cacheKey, strconv.FormatFloat(parsed.Solana.USD, 'f', -1, 64), cg.cacheTTL).Err(); err != nil {
			logger.Warn(ctx, "Failed to cache SOL price", "error", err)
		}
	}
	return parsed.Solana.USD, nil
}
