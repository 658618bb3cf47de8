package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID int64     `db:"portfolio_id"`
	OwnerID     int64     `db:"owner_id"`
	Name        string    `db:"name"`
	Currency    string    `db:"currency"`
	CreatedAt   time.Time `db:"dt_create"`
}

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	PortfolioID   int64           `db:"portfolio_id"`
	Symbol        string          `db:"symbol"`
	Quantity      decimal.Decimal `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	Kind          string          `db:"kind"`
	CreatedAt     time.Time       `db:"dt_create"`
}
