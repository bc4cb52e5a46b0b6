// src/processors/grouping_processor.go
package processors

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

var (
	centStep   = decimal.New(1, -2)
	bucketStep = decimal.New(1, -3)
)

// SymbolTransactions is the ordered, grouped sequence for one symbol.
type SymbolTransactions struct {
	Symbol       string
	Transactions []models.TradeRecord
}

type TransactionGrouper struct {
	patterns Classifier
}

func NewTransactionGrouper(patterns Classifier) *TransactionGrouper {
	return &TransactionGrouper{patterns: patterns}
}

// CostBucket quantizes a cost per share: count whole cents (half to even) and
// rescale the count by one thousandth. Costs in the same bucket are merged.
func CostBucket(cost decimal.Decimal) decimal.Decimal {
	return cost.Div(centStep).RoundBank(0).Mul(bucketStep)
}

// EarliestBySymbol returns, per symbol, the record with the earliest trade date.
// Ties keep the record that came first.
func EarliestBySymbol(records []models.TradeRecord) map[string]models.TradeRecord {
	earliest := make(map[string]models.TradeRecord)
	for _, r := range records {
		if r.Symbol == "" || r.TradeDate.IsZero() {
			continue
		}
		cur, ok := earliest[r.Symbol]
		if !ok || r.TradeDate.Before(cur.TradeDate) {
			earliest[r.Symbol] = r
		}
	}
	return earliest
}

// ValidateOldestBuy rejects a symbol whose earliest activity is a sell, or has no
// activity at all, when the ledger has no open lot for it.
func (g *TransactionGrouper) ValidateOldestBuy(symbol, earliestActivity string, hasOpenLot bool) error {
	if hasOpenLot {
		return nil
	}
	if strings.TrimSpace(earliestActivity) == "" || g.patterns.Classify(earliestActivity) == ActivitySell {
		return &NoPrecedentBuyError{Symbol: symbol, Activity: earliestActivity}
	}
	return nil
}

type groupKey struct {
	activity string
	bucket   string
}

// GroupBySymbolThenDate partitions records by symbol, orders each partition by
// trade date and, within a trading day, merges records with the same activity
// and cost bucket. The merged record keeps the first record's fields and sums
// quantity and amount. Symbols come back in lexical order.
func (g *TransactionGrouper) GroupBySymbolThenDate(records []models.TradeRecord) []SymbolTransactions {
	ordered := make([]models.TradeRecord, 0, len(records))
	for _, r := range records {
		if r.Symbol == "" || r.TradeDate.IsZero() {
			continue
		}
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Symbol != ordered[j].Symbol {
			return ordered[i].Symbol < ordered[j].Symbol
		}
		return ordered[i].TradeDate.Before(ordered[j].TradeDate)
	})

	var result []SymbolTransactions
	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].Symbol == ordered[start].Symbol {
			end++
		}
		result = append(result, SymbolTransactions{
			Symbol:       ordered[start].Symbol,
			Transactions: groupByDay(ordered[start:end]),
		})
		start = end
	}
	return result
}

// groupByDay expects records of one symbol sorted by trade date.
func groupByDay(records []models.TradeRecord) []models.TradeRecord {
	var out []models.TradeRecord
	for start := 0; start < len(records); {
		day := utils.DayKey(records[start].TradeDate)
		end := start
		for end < len(records) && utils.DayKey(records[end].TradeDate) == day {
			end++
		}

		index := make(map[groupKey]int)
		var merged []models.TradeRecord
		for _, r := range records[start:end] {
			activity := strings.ToUpper(strings.TrimSpace(r.Activity))
			if activity == "" {
				continue
			}
			key := groupKey{activity: activity, bucket: CostBucket(r.CostPerStock).String()}
			if i, ok := index[key]; ok {
				merged[i].Quantity += r.Quantity
				merged[i].Amount = merged[i].Amount.Add(r.Amount)
				merged[i].SourceRows = append(merged[i].SourceRows, r.SourceRows...)
				continue
			}
			r.SourceRows = append([]int(nil), r.SourceRows...)
			index[key] = len(merged)
			merged = append(merged, r)
		}
		out = append(out, merged...)
		start = end
	}
	return out
}
