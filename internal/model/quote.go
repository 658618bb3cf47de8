package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the latest observed price for a symbol. The cache keeps at
// most one quote per symbol; ObservedAt lets consumers judge staleness since
// the cache itself never expires entries.
type PriceQuote struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observedAt"`
}
