package processors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/models"
)

// commit applies a planned mutation to an in-memory history, assigning ids.
func commit(t *testing.T, history []models.Lot, m models.LotMutation) []models.Lot {
	t.Helper()
	for _, id := range m.Close {
		found := false
		for i := range history {
			if history[i].ID == id {
				require.False(t, history[i].Closed, "lot %d closed twice", id)
				history[i].Closed = true
				found = true
			}
		}
		require.True(t, found, "lot %d not in history", id)
	}
	for _, l := range m.Create {
		l.ID = int64(len(history) + 1)
		history = append(history, l)
	}
	return history
}

func openQuantity(p *LotProcessor, history []models.Lot) int64 {
	var sum int64
	for _, l := range p.OpenLots(history) {
		sum += l.Quantity
	}
	return sum
}

func names(lots []models.Lot) []string {
	var out []string
	for _, l := range lots {
		out = append(out, l.Name)
	}
	return out
}

func TestPlanBuyNumbersLotsGapless(t *testing.T) {
	p := NewLotProcessor(DefaultPatternTable())
	var history []models.Lot
	for i := 1; i <= 3; i++ {
		m, err := p.PlanBuy(history, trade(i, "ABC", "BUY", day(i), 10, "5"))
		require.NoError(t, err)
		require.Len(t, m.Create, 1)
		assert.Empty(t, m.Close)
		assert.Equal(t, i, m.Create[0].LotNumber)
		history = commit(t, history, m)
	}
	assert.Equal(t, []string{"LOT00001", "LOT00002", "LOT00003"}, names(history))
	assert.Nil(t, history[0].EndDate)
	assert.True(t, day(1).Equal(*history[0].StartDate))

	_, err := p.PlanBuy(history, trade(9, "ABC", "BUY", day(9), 0, "5"))
	assert.Error(t, err)
}

func TestPlanSellScenario(t *testing.T) {
	p := NewLotProcessor(DefaultPatternTable())
	m, err := p.PlanBuy(nil, trade(1, "ABC", "BUY", day(1), 100, "10"))
	require.NoError(t, err)
	history := commit(t, nil, m)

	m, err = p.PlanSell(history, trade(2, "ABC", "SELL", day(2), 40, "12"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, m.Close)
	assert.Equal(t, []string{"LOT00001_SOLD", "LOT00001_DISCOUNTED", "LOT00001"}, names(m.Create))

	sold, discounted, rest := m.Create[0], m.Create[1], m.Create[2]
	assert.True(t, sold.Closed)
	assert.Nil(t, sold.StartDate)
	assert.Equal(t, int64(40), sold.Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(sold.CostPerStock))

	assert.True(t, discounted.Closed)
	assert.Equal(t, int64(40), discounted.Quantity)
	assert.True(t, decimal.NewFromInt(400).Equal(discounted.Amount))
	assert.True(t, day(2).Equal(*discounted.EndDate))
	assert.True(t, day(1).Equal(*discounted.StartDate))
	assert.Equal(t, "SELL", discounted.Activity)

	assert.False(t, rest.Closed)
	assert.Equal(t, int64(60), rest.Quantity)
	assert.Equal(t, 1, rest.LotNumber)
	assert.Nil(t, rest.EndDate)
	assert.Equal(t, "BUY", rest.Activity)
	assert.True(t, decimal.NewFromInt(600).Equal(rest.Amount))

	history = commit(t, history, m)
	assert.Equal(t, int64(60), openQuantity(p, history))

	m, err = p.PlanSell(history, trade(3, "ABC", "SELL", day(3), 60, "12"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LOT00001_SOLD", "LOT00001_FINISHED"}, names(m.Create))
	assert.Equal(t, int64(60), m.Create[1].Quantity)

	history = commit(t, history, m)
	assert.Empty(t, p.OpenLots(history))
	assert.Equal(t, 2, p.NextLotNumber(history))
}

func TestPlanSellAcrossLots(t *testing.T) {
	p := NewLotProcessor(DefaultPatternTable())
	var history []models.Lot
	for i, qty := range []int64{30, 30, 50} {
		m, err := p.PlanBuy(history, trade(i+1, "ABC", "BUY", day(i+1), qty, "10"))
		require.NoError(t, err)
		history = commit(t, history, m)
	}

	m, err := p.PlanSell(history, trade(9, "ABC", "SELL", day(9), 70, "11"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, m.Close)
	assert.Equal(t, []string{
		"LOT00001_SOLD",
		"LOT00001_FINISHED",
		"LOT00002_FINISHED",
		"LOT00003_DISCOUNTED",
		"LOT00003",
	}, names(m.Create))
	assert.Equal(t, int64(10), m.Create[3].Quantity)
	assert.Equal(t, int64(40), m.Create[4].Quantity)

	history = commit(t, history, m)
	assert.Equal(t, int64(40), openQuantity(p, history))
	assert.Equal(t, 3, p.OldestOpen(history).LotNumber)
}

func TestPlanSellInsufficient(t *testing.T) {
	p := NewLotProcessor(DefaultPatternTable())

	_, err := p.PlanSell(nil, trade(1, "ABC", "SELL", day(1), 5, "10"))
	var ile *InsufficientLotError
	require.True(t, errors.As(err, &ile))
	assert.Equal(t, int64(5), ile.Outstanding)

	m, err := p.PlanBuy(nil, trade(1, "ABC", "BUY", day(1), 20, "10"))
	require.NoError(t, err)
	history := commit(t, nil, m)

	m, err = p.PlanSell(history, trade(2, "ABC", "SELL", day(2), 25, "10"))
	require.True(t, errors.As(err, &ile))
	assert.Equal(t, int64(5), ile.Outstanding)
	assert.Equal(t, "ABC", ile.Symbol)
	assert.True(t, m.Empty())
	assert.Contains(t, err.Error(), "2024-01-02")
}

func TestFIFOInvariant(t *testing.T) {
	p := NewLotProcessor(DefaultPatternTable())
	steps := []struct {
		activity string
		qty      int64
	}{
		{"BUY", 10}, {"BUY", 25}, {"SELL", 5}, {"INCOME", 3}, {"SELL", 20},
		{"BUY", 7}, {"SELL", 13}, {"SELL", 1}, {"BUY", 40}, {"SELL", 46},
	}
	var history []models.Lot
	var net int64
	for i, s := range steps {
		tx := trade(i+1, "ABC", s.activity, day(i+1), s.qty, "2.5")
		var (
			m   models.LotMutation
			err error
		)
		if p.patterns.Classify(s.activity) == ActivityBuy {
			m, err = p.PlanBuy(history, tx)
			net += s.qty
		} else {
			m, err = p.PlanSell(history, tx)
			net -= s.qty
		}
		require.NoError(t, err, "step %d", i)
		history = commit(t, history, m)
		assert.Equal(t, net, openQuantity(p, history), "step %d", i)
		for _, l := range p.OpenLots(history) {
			assert.Positive(t, l.Quantity)
		}
	}
}
