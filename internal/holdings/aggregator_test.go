package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight/internal/model"
)

func tx(symbol string, kind model.TxKind, qty, price int64) model.Transaction {
	return model.Transaction{
		Symbol:   symbol,
		Kind:     kind,
		Quantity: decimal.NewFromInt(qty),
		Price:    decimal.NewFromInt(price),
	}
}

func TestAggregate_BuysAndSells(t *testing.T) {
	txs := []model.Transaction{
		tx("AAPL", model.TxKindBuy, 10, 100),
		tx("AAPL", model.TxKindBuy, 5, 110),
		tx("AAPL", model.TxKindSell, 3, 120),
	}

	positions, err := Aggregate(txs)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	pos := positions["AAPL"]
	assert.True(t, pos.Quantity.Equal(decimal.NewFromInt(12)), "quantity = %s", pos.Quantity)
	assert.True(t, pos.CostBasis.Equal(decimal.NewFromInt(1550)), "costBasis = %s", pos.CostBasis)
	assert.True(t, pos.RealizedPL.Equal(decimal.NewFromInt(360)), "realizedPL = %s", pos.RealizedPL)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	forward := []model.Transaction{
		tx("AAPL", model.TxKindBuy, 10, 100),
		tx("AAPL", model.TxKindSell, 3, 120),
		tx("AAPL", model.TxKindBuy, 5, 110),
	}
	reversed := []model.Transaction{
		tx("AAPL", model.TxKindBuy, 5, 110),
		tx("AAPL", model.TxKindSell, 3, 120),
		tx("AAPL", model.TxKindBuy, 10, 100),
	}

	a, err := Aggregate(forward)
	require.NoError(t, err)
	b, err := Aggregate(reversed)
	require.NoError(t, err)

	assert.True(t, a["AAPL"].Quantity.Equal(b["AAPL"].Quantity))
	assert.True(t, a["AAPL"].CostBasis.Equal(b["AAPL"].CostBasis))
	assert.True(t, a["AAPL"].RealizedPL.Equal(b["AAPL"].RealizedPL))
}

func TestAggregate_CostBasisNotReducedOnSell(t *testing.T) {
	txs := []model.Transaction{
		tx("GOOG", model.TxKindBuy, 10, 50),
		tx("GOOG", model.TxKindSell, 10, 60),
	}

	positions, err := Aggregate(txs)
	require.NoError(t, err)

	pos := positions["GOOG"]
	assert.True(t, pos.Quantity.IsZero())
	assert.True(t, pos.CostBasis.Equal(decimal.NewFromInt(500)), "cost basis stays additive-only")
	assert.True(t, pos.RealizedPL.Equal(decimal.NewFromInt(600)))
}

func TestAggregate_MultipleSymbols(t *testing.T) {
	txs := []model.Transaction{
		tx("AAPL", model.TxKindBuy, 1, 100),
		tx("MSFT", model.TxKindBuy, 2, 200),
		tx("AAPL", model.TxKindSell, 1, 110),
	}

	positions, err := Aggregate(txs)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.True(t, positions["AAPL"].Quantity.IsZero())
	assert.True(t, positions["MSFT"].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestAggregate_RejectsUnknownKind(t *testing.T) {
	txs := []model.Transaction{
		tx("AAPL", model.TxKindBuy, 1, 100),
		tx("AAPL", model.TxKind("TRANSFER"), 1, 100),
	}

	_, err := Aggregate(txs)
	require.ErrorIs(t, err, ErrInvalidTransactionKind)
}

func TestAggregate_Empty(t *testing.T) {
	positions, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestPosition_AvgCost(t *testing.T) {
	pos := model.Position{
		Quantity:  decimal.NewFromInt(12),
		CostBasis: decimal.NewFromInt(1550),
	}
	assert.True(t, pos.AvgCost().Equal(decimal.NewFromInt(1550).Div(decimal.NewFromInt(12))))

	assert.True(t, model.Position{}.AvgCost().IsZero())
}
