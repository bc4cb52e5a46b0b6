package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	FinishedSuffix   = "_FINISHED"
	DiscountedSuffix = "_DISCOUNTED"
	SoldSuffix       = "_SOLD" // closed marker of what a sell took, at the oldest lot's basis
)

// Lot is a quantity of one symbol at one cost basis owned by one user.
// A persisted lot only ever changes by flipping Closed from false to true.
type Lot struct {
	ID           int64           `json:"id"`
	LotNumber    int             `json:"lot_number"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
	EndDate      *time.Time      `json:"end_date,omitempty"` // nil while the buy side is open
	Quantity     int64           `json:"quantity"`
	CostPerStock decimal.Decimal `json:"cost_per_stock"`
	Amount       decimal.Decimal `json:"amount"`
	Activity     string          `json:"activity"`
	Closed       bool            `json:"closed"`
	UserID       int64           `json:"user_id"`
	CompanyID    int64           `json:"company_id,omitempty"`
}

// LotName renders the human-readable lot tag, e.g. LOT00007.
func LotName(lotNumber int) string {
	return fmt.Sprintf("LOT%05d", lotNumber)
}

// LotMutation is the full set of writes produced by one buy or sell. It is
// committed as a single unit or not at all.
type LotMutation struct {
	Close  []int64 `json:"close"`
	Create []Lot   `json:"create"`
}

// Empty reports whether the mutation would write nothing.
func (m LotMutation) Empty() bool {
	return len(m.Close) == 0 && len(m.Create) == 0
}
