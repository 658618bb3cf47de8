package postgres

import (
	"context"
	"log/slog"

	"github.com/finsight/finsight/internal/converter/dbConverter"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/model/dbModel"
	"github.com/finsight/finsight/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(portfolio_id, symbol, quantity, price, kind)
		VALUES($1, $2, $3, $4, $5)
		RETURNING transaction_id
		`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, tx.PortfolioID, tx.Symbol, tx.Quantity, tx.Price, string(tx.Kind)).Scan(&transactionID)
	if err != nil {
		return 0, err
	}

	return transactionID, nil
}

// GetTransactions returns the full ledger for a portfolio. Order is not
// significant to the aggregator; rows come back in insertion order anyway.
func (r *Postgres) GetTransactions(ctx context.Context, portfolioID int64) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, portfolio_id, symbol, quantity, price, kind, dt_create
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY transaction_id
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbTx dbModel.Transaction
		err = rows.StructScan(&dbTx)
		if err != nil {
			return nil, err
		}

		tx, err := dbConverter.ConvertTransaction(dbTx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}
