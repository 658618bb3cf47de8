package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID int64
	OwnerID     int64
	Name        string
	Currency    string
	CreatedAt   time.Time
}

// Position is derived from the ledger on every valuation request, never persisted.
//
// CostBasis accumulates buys only and is never reduced on a sell; average
// cost is therefore cost over bought quantity, not a moving average net of
// sells. RealizedPL books sell proceeds separately.
type Position struct {
	Symbol     string
	Quantity   decimal.Decimal
	CostBasis  decimal.Decimal
	RealizedPL decimal.Decimal
}

// AvgCost returns CostBasis per currently held unit, zero when nothing is held.
func (p Position) AvgCost() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.CostBasis.Div(p.Quantity)
}

// Holding is a Position enriched with the cached market price. Priced is
// false when no quote exists for the symbol, which is distinct from a quote
// whose price happens to be zero.
type Holding struct {
	Position
	MarketPrice decimal.Decimal
	MarketValue decimal.Decimal
	ObservedAt  time.Time
	Priced      bool
}

type PortfolioSummary struct {
	PortfolioID  int64
	Name         string
	Holdings     []Holding
	TotalValue   decimal.Decimal
	TotalCost    decimal.Decimal
	UnrealizedPL decimal.Decimal
}
