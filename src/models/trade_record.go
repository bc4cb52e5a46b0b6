package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is a raw or grouped brokerage transaction. Records are never
// mutated once persisted; they are kept as the audit trail of an import.
type TradeRecord struct {
	ID            int64           `json:"id,omitempty"`
	UserID        int64           `json:"user_id"`
	CompanyID     int64           `json:"company_id,omitempty"` // 0 when the owner has no company
	ImportJobID   string          `json:"import_job_id,omitempty"`
	DataFor       string          `json:"data_for"`
	TradeDate     time.Time       `json:"trade_date"`
	Account       string          `json:"account"`
	AccountName   string          `json:"account_name"`
	AccountType   string          `json:"account_type"`
	AccountNumber string          `json:"account_number"`
	Activity      string          `json:"activity"` // free text, classified by processors.PatternTable
	Description   string          `json:"description"`
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"` // magnitude only; the activity carries the sign
	CostPerStock  decimal.Decimal `json:"cost_per_stock"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes"`

	// SourceRows identifies the input rows folded into this record: row numbers
	// out of the converter, positions in the batch inside an import job. Not persisted.
	SourceRows []int `json:"-"`
}
