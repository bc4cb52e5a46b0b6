package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefaultTable(t *testing.T) {
	table := DefaultPatternTable()
	cases := []struct {
		activity string
		want     ActivityClass
	}{
		{"BUY", ActivityBuy},
		{" buy ", ActivityBuy},
		{"Dividend Income", ActivityBuy},
		{"SELL", ActivitySell},
		{"sell short", ActivitySell},
		{"DIVIDEND", ActivityOther},
		{"", ActivityOther},
	}
	for _, tc := range cases {
		t.Run(tc.activity, func(t *testing.T) {
			assert.Equal(t, tc.want, table.Classify(tc.activity))
		})
	}
}

func TestClassifyRegexLabels(t *testing.T) {
	table, err := NewPatternTable([]string{`^BOUGHT\b.*`}, []string{`^SOLD$`, "REDEEM"})
	require.NoError(t, err)

	assert.Equal(t, ActivityBuy, table.Classify("bought 10 shares"))
	assert.Equal(t, ActivityOther, table.Classify("not bought"))
	assert.Equal(t, ActivitySell, table.Classify("Sold"))
	assert.Equal(t, ActivityOther, table.Classify("sold out"))
	assert.Equal(t, ActivitySell, table.Classify("early redeem"))
	assert.Equal(t, "OTHER", table.Classify("BUY").String())
}

func TestBuyLabelsWinOverSell(t *testing.T) {
	table, err := NewPatternTable([]string{"TRADE"}, []string{"TRADE"})
	require.NoError(t, err)
	assert.Equal(t, ActivityBuy, table.Classify("trade"))
}

func TestNewPatternTableErrors(t *testing.T) {
	_, err := NewPatternTable(nil, []string{"SELL"})
	assert.Error(t, err)

	_, err = NewPatternTable([]string{"BUY("}, nil)
	assert.Error(t, err)
}
