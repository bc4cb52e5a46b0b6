package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimCase is a class-action settlement case definition.
type ClaimCase struct {
	ID                    int64           `json:"id"`
	TickerSymbol          string          `json:"tycker_symbol"`
	CompanyName           string          `json:"company_name"`
	Exchange              string          `json:"exchange"`
	LawsuitType           string          `json:"lawsuit_type"`
	LawFirm               string          `json:"law_firm_handing_case"`
	CaseDocketNumber      string          `json:"case_docket_number"`
	CompanyID             int64           `json:"company_id"`
	ValuePerShare         decimal.Decimal `json:"value_per_share"`
	StartEligibilityDate  time.Time       `json:"start_eligibility_date"`
	FinalEligibilityDate  time.Time       `json:"final_eligibility_date"`
	ClaimStatus           string          `json:"claim_status"`
	MethodSendClaimFormat string          `json:"method_send_claim_format"`
	NotificationEmail     string          `json:"email"`
	Claimed               bool            `json:"claimed"`
}

// ClaimRecord is a draft claim for one eligible lot.
type ClaimRecord struct {
	ID            int64           `json:"id"`
	BatchID       string          `json:"batch_id"`
	Symbol        string          `json:"tycker_symbol"`
	CompanyName   string          `json:"company_name"`
	QuantityStock int64           `json:"quantity_stock"`
	ValuePerStock decimal.Decimal `json:"value_per_stock"`
	Amount        decimal.Decimal `json:"amount"`
	ClaimDate     time.Time       `json:"claim_date"`
	Status        string          `json:"status"`
	UserID        int64           `json:"user_id"`
	CompanyID     int64           `json:"company_id"`
	LotID         int64           `json:"holding_id"`
	CaseID        int64           `json:"claim_id"`
	FormatSent    bool            `json:"send_format"`
}
