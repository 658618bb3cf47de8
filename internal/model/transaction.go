package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxKind is a closed set: a ledger record with any other kind is rejected
// at the boundary instead of being silently dropped during aggregation.
type TxKind string

const (
	TxKindBuy  TxKind = "BUY"
	TxKindSell TxKind = "SELL"
)

func ParseTxKind(s string) (TxKind, error) {
	switch strings.ToUpper(s) {
	case string(TxKindBuy):
		return TxKindBuy, nil
	case string(TxKindSell):
		return TxKindSell, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

type Transaction struct {
	TransactionID int64
	PortfolioID   int64
	Symbol        string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Kind          TxKind
	CreatedAt     time.Time
}
