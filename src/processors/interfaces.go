package processors

import (
	"github.com/username/claimfolio/src/models"
)

// Classifier maps an activity label to its class.
type Classifier interface {
	Classify(activity string) ActivityClass
}

// Grouper validates and folds raw trade records into the per-symbol sequence
// applied to the ledger.
type Grouper interface {
	ValidateOldestBuy(symbol, earliestActivity string, hasOpenLot bool) error
	GroupBySymbolThenDate(records []models.TradeRecord) []SymbolTransactions
}

var _ Grouper = (*TransactionGrouper)(nil)
