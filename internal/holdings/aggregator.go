package holdings

import (
	"errors"
	"fmt"

	"github.com/finsight/finsight/internal/model"
)

var ErrInvalidTransactionKind = errors.New("invalid transaction kind")

// Aggregate folds a portfolio's transaction ledger into per-symbol positions
// in a single pass.
//
// BUY adds quantity and cost; SELL subtracts quantity and books the proceeds
// as realized P&L. Cost basis is additive-only: it is never reduced on a
// sell, so average cost is cost over bought quantity rather than a moving
// average net of sells. All per-symbol terms are commutative sums, so the
// input order does not affect the result and the ledger may be an unordered
// snapshot.
func Aggregate(txs []model.Transaction) (map[string]model.Position, error) {
	positions := make(map[string]model.Position)

	for _, tx := range txs {
		pos, ok := positions[tx.Symbol]
		if !ok {
			pos = model.Position{Symbol: tx.Symbol}
		}

		switch tx.Kind {
		case model.TxKindBuy:
			pos.CostBasis = pos.CostBasis.Add(tx.Quantity.Mul(tx.Price))
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
		case model.TxKindSell:
			pos.Quantity = pos.Quantity.Sub(tx.Quantity)
			pos.RealizedPL = pos.RealizedPL.Add(tx.Quantity.Mul(tx.Price))
		default:
			return nil, fmt.Errorf("%w: %q (transaction %d)", ErrInvalidTransactionKind, tx.Kind, tx.TransactionID)
		}

		positions[tx.Symbol] = pos
	}

	return positions, nil
}
