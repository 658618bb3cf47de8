package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const priceKeyPrefix = "price:"

// RedisPriceCache keeps the latest quote per symbol under price:<SYMBOL>.
// Keys are written without expiration: entries live until the next refresh
// overwrites them, and the whole quote is replaced in a single SET so readers
// see either the old quote or the new one, never a mix.
type RedisPriceCache struct {
	redis *redis.Client
}

func NewRedisPriceCache(redisClient *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{redis: redisClient}
}

func (r *RedisPriceCache) UpsertPrice(ctx context.Context, symbol string, price decimal.Decimal, observedAt time.Time) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("UpsertPrice start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	quote := model.PriceQuote{Symbol: symbol, Price: price, ObservedAt: observedAt}

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error(
			"can't marshall quote in UpsertPrice",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("quote", quote),
		)
		return errors.New("can't marshall quote")
	}

	err = r.redis.Set(ctx, priceKeyPrefix+symbol, quoteJson, 0).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return err
	}

	slog.Debug("UpsertPrice completed", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return nil
}

func (r *RedisPriceCache) GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPrice start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, priceKeyPrefix+symbol).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PriceQuote{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return model.PriceQuote{}, err
	}

	quote := model.PriceQuote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetPrice",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.PriceQuote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetPrice finished", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return quote, nil
}

// GetPrices returns quotes for the symbols that have one; absent symbols are
// simply missing from the result map.
func (r *RedisPriceCache) GetPrices(ctx context.Context, symbols []string) (map[string]model.PriceQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPrices start", slog.String("rqID", rqID), slog.Any("symbols", symbols))

	if len(symbols) == 0 {
		return map[string]model.PriceQuote{}, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, priceKeyPrefix+symbol)
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := make(map[string]model.PriceQuote, len(symbols))
	for i, value := range values {
		if value == nil {
			continue
		}

		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type for key %s", keys[i])
		}

		quote := model.PriceQuote{}
		if err := json.Unmarshal([]byte(raw), &quote); err != nil {
			slog.Error(
				"can't unmarshall quote in GetPrices",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("resultFromRedis", raw),
			)
			return nil, errors.New("can't unmarshall quote")
		}
		quotes[quote.Symbol] = quote
	}

	slog.Debug("GetPrices finished", slog.String("rqID", rqID), slog.Int("found", len(quotes)))

	return quotes, nil
}
