package processors

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func trade(row int, symbol, activity string, date time.Time, qty int64, cost string) models.TradeRecord {
	c := decimal.RequireFromString(cost)
	return models.TradeRecord{
		UserID:       1,
		Symbol:       symbol,
		Activity:     activity,
		TradeDate:    date,
		Quantity:     qty,
		CostPerStock: c,
		Amount:       c.Mul(decimal.NewFromInt(qty)),
		SourceRows:   []int{row},
	}
}

func TestCostBucket(t *testing.T) {
	cases := []struct {
		cost string
		want string
	}{
		{"10", "1"},
		{"10.004", "1"},
		{"10.005", "1"},
		{"10.015", "1.002"},
		{"10.0149", "1.001"},
		{"0.004", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.cost, func(t *testing.T) {
			got := CostBucket(decimal.RequireFromString(tc.cost))
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestGroupMergesSameDaySameBucket(t *testing.T) {
	g := NewTransactionGrouper(DefaultPatternTable())
	records := []models.TradeRecord{
		trade(1, "ABC", "BUY", day(1).Add(9*time.Hour), 50, "10.001"),
		trade(2, "ABC", "buy", day(1).Add(15*time.Hour), 50, "10.002"),
	}

	groups := g.GroupBySymbolThenDate(records)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Transactions, 1)

	merged := groups[0].Transactions[0]
	assert.Equal(t, int64(100), merged.Quantity)
	assert.True(t, decimal.RequireFromString("1000.15").Equal(merged.Amount))
	assert.True(t, decimal.RequireFromString("10.001").Equal(merged.CostPerStock))
	assert.Equal(t, "BUY", merged.Activity)
	assert.Equal(t, []int{1, 2}, merged.SourceRows)
}

func TestGroupKeepsDistinctKeysApart(t *testing.T) {
	g := NewTransactionGrouper(DefaultPatternTable())
	records := []models.TradeRecord{
		trade(1, "XYZ", "SELL", day(3), 5, "12"),
		trade(2, "ABC", "BUY", day(2), 10, "10"),
		trade(3, "ABC", "BUY", day(1), 10, "10"),
		trade(4, "ABC", "BUY", day(1), 10, "11"),
		trade(5, "ABC", "SELL", day(1), 3, "10"),
		trade(6, "", "BUY", day(1), 1, "1"),
		trade(7, "ABC", "", day(1), 1, "1"),
	}

	groups := g.GroupBySymbolThenDate(records)
	require.Len(t, groups, 2)
	assert.Equal(t, "ABC", groups[0].Symbol)
	assert.Equal(t, "XYZ", groups[1].Symbol)

	var rows [][]int
	for _, tx := range groups[0].Transactions {
		rows = append(rows, tx.SourceRows)
	}
	assert.Equal(t, [][]int{{3}, {4}, {5}, {2}}, rows)
}

func TestGroupIsStableUnderReapplication(t *testing.T) {
	g := NewTransactionGrouper(DefaultPatternTable())
	records := []models.TradeRecord{
		trade(1, "ABC", "BUY", day(1), 50, "10"),
		trade(2, "ABC", "BUY", day(1), 50, "10.004"),
		trade(3, "ABC", "SELL", day(2), 20, "12"),
		trade(4, "ABC", "SELL", day(2), 20, "12"),
		trade(5, "DEF", "INCOME", day(1), 7, "3"),
	}

	once := g.GroupBySymbolThenDate(records)
	var flat []models.TradeRecord
	for _, s := range once {
		flat = append(flat, s.Transactions...)
	}
	twice := g.GroupBySymbolThenDate(flat)
	assert.Equal(t, once, twice)
}

func TestEarliestBySymbol(t *testing.T) {
	records := []models.TradeRecord{
		trade(1, "ABC", "BUY", day(2), 1, "1"),
		trade(2, "ABC", "SELL", day(1), 1, "1"),
		trade(3, "ABC", "BUY", day(1), 1, "1"),
		trade(4, "DEF", "BUY", day(5), 1, "1"),
	}
	earliest := EarliestBySymbol(records)
	assert.Equal(t, "SELL", earliest["ABC"].Activity)
	assert.Equal(t, []int{4}, earliest["DEF"].SourceRows)
}

func TestValidateOldestBuy(t *testing.T) {
	g := NewTransactionGrouper(DefaultPatternTable())

	assert.NoError(t, g.ValidateOldestBuy("ABC", "BUY", false))
	assert.NoError(t, g.ValidateOldestBuy("ABC", "SELL", true))
	assert.NoError(t, g.ValidateOldestBuy("ABC", "DIVIDEND", false))

	err := g.ValidateOldestBuy("ABC", "SELL", false)
	var npb *NoPrecedentBuyError
	require.True(t, errors.As(err, &npb))
	assert.Equal(t, "ABC", npb.Symbol)

	assert.Error(t, g.ValidateOldestBuy("ABC", " ", false))
}
