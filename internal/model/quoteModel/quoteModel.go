package quoteModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

type QuotesResponse struct {
	Quotes []Quote `json:"quotes"`
}
