package dbConverter

import (
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/model/dbModel"
)

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) model.Portfolio {
	return model.Portfolio{
		PortfolioID: dbPortfolio.PortfolioID,
		OwnerID:     dbPortfolio.OwnerID,
		Name:        dbPortfolio.Name,
		Currency:    dbPortfolio.Currency,
		CreatedAt:   dbPortfolio.CreatedAt,
	}
}

// ConvertTransaction rejects rows whose kind is outside the closed BUY|SELL
// set so malformed ledger records fail aggregation instead of miscounting.
func ConvertTransaction(dbTx dbModel.Transaction) (model.Transaction, error) {
	kind, err := model.ParseTxKind(dbTx.Kind)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		TransactionID: dbTx.TransactionID,
		PortfolioID:   dbTx.PortfolioID,
		Symbol:        dbTx.Symbol,
		Quantity:      dbTx.Quantity,
		Price:         dbTx.Price,
		Kind:          kind,
		CreatedAt:     dbTx.CreatedAt,
	}, nil
}

func ConvertAlert(dbAlert dbModel.Alert) (model.Alert, error) {
	condition, err := model.ParseAlertCondition(dbAlert.Condition)
	if err != nil {
		return model.Alert{}, err
	}

	return model.Alert{
		AlertID:   dbAlert.AlertID,
		OwnerID:   dbAlert.OwnerID,
		Symbol:    dbAlert.Symbol,
		Condition: condition,
		Threshold: dbAlert.Threshold,
		Triggered: dbAlert.Triggered,
		CreatedAt: dbAlert.CreatedAt,
	}, nil
}
