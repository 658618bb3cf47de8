package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTxKind(t *testing.T) {
	kind, err := ParseTxKind("buy")
	require.NoError(t, err)
	assert.Equal(t, TxKindBuy, kind)

	kind, err = ParseTxKind("SELL")
	require.NoError(t, err)
	assert.Equal(t, TxKindSell, kind)

	_, err = ParseTxKind("TRANSFER")
	require.Error(t, err)

	_, err = ParseTxKind("")
	require.Error(t, err)
}

func TestParseAlertCondition(t *testing.T) {
	condition, err := ParseAlertCondition("gt")
	require.NoError(t, err)
	assert.Equal(t, ConditionGT, condition)

	condition, err = ParseAlertCondition("LT")
	require.NoError(t, err)
	assert.Equal(t, ConditionLT, condition)

	_, err = ParseAlertCondition("GTE")
	require.Error(t, err)
}

func TestAlertSatisfied_StrictInequality(t *testing.T) {
	threshold := decimal.NewFromInt(90)

	gt := Alert{Condition: ConditionGT, Threshold: threshold}
	assert.True(t, gt.Satisfied(decimal.NewFromInt(95)))
	assert.False(t, gt.Satisfied(threshold), "equality never fires")
	assert.False(t, gt.Satisfied(decimal.NewFromInt(85)))

	lt := Alert{Condition: ConditionLT, Threshold: threshold}
	assert.True(t, lt.Satisfied(decimal.NewFromInt(85)))
	assert.False(t, lt.Satisfied(threshold), "equality never fires")
	assert.False(t, lt.Satisfied(decimal.NewFromInt(95)))
}
