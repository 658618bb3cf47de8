package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Alert struct {
	AlertID   int64           `db:"alert_id"`
	OwnerID   int64           `db:"owner_id"`
	Symbol    string          `db:"symbol"`
	Condition string          `db:"condition"`
	Threshold decimal.Decimal `db:"threshold"`
	Triggered bool            `db:"triggered"`
	CreatedAt time.Time       `db:"dt_create"`
}
