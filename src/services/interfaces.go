package services

import (
	"context"
	"io"
	"time"

	"github.com/username/claimfolio/src/models"
)

// OpenPosition is the open side of one user's lots for a symbol.
type OpenPosition struct {
	UserID   int64
	Symbol   string
	Lots     []models.Lot
	Quantity int64
}

// HoldingService is the lot ledger. Writes for one (user, symbol) are serialised.
type HoldingService interface {
	ApplyBuy(ctx context.Context, tx models.TradeRecord) ([]models.Lot, error)
	ApplySell(ctx context.Context, tx models.TradeRecord) ([]models.Lot, error)
	OldestOpenLot(ctx context.Context, userID int64, symbol string) (*models.Lot, error)
	HasOpenLot(ctx context.Context, userID int64, symbol string) (bool, error)
	OpenPosition(ctx context.Context, userID int64, symbol string) (*OpenPosition, error)
	CompanyHoldings(ctx context.Context, companyID int64, symbol string, from, to time.Time) ([]models.Lot, error)
}

// ImportResult is what an import job reports back: row counts plus warnings
// keyed by symbol. ImportWarnings holds symbols rejected before the ledger ran,
// ProcessWarnings the ledger failures.
type ImportResult struct {
	JobID           string            `json:"import_job_id"`
	Successful      int               `json:"successful"`
	Failed          int               `json:"failed"`
	ImportWarnings  map[string]string `json:"import_warnings"`
	ProcessWarnings map[string]string `json:"process_warnings"`
}

type ImportService interface {
	ImportRows(ctx context.Context, owner models.User, rows []models.RawRow) (*ImportResult, error)
	ImportFile(ctx context.Context, owner models.User, source string, file io.ReadSeeker) (*ImportResult, error)
	JobLog(ctx context.Context, jobID string) ([]models.ImportLog, error)
	ErrorJobs(ctx context.Context, userID int64) ([]models.ImportJobErrors, error)
}

// DispatchReport is the dispatch outcome of one user's claim group.
type DispatchReport struct {
	UserID  int64  `json:"user_id"`
	Records int    `json:"records"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ClaimRunResult holds the persisted claim records per user, in the order the
// users first appeared among the eligible lots.
type ClaimRunResult struct {
	CaseID   int64                          `json:"case_id"`
	Users    []int64                        `json:"users"`
	Records  map[int64][]models.ClaimRecord `json:"records"`
	Dispatch []DispatchReport               `json:"dispatch"`
}

type ClaimService interface {
	ProcessClaim(ctx context.Context, actor models.Actor, claimCase *models.ClaimCase) (*ClaimRunResult, error)
	GenerateForCase(ctx context.Context, actor models.Actor, caseID int64) (*ClaimRunResult, error)
}

// Dispatcher forwards a user's claim package over the case's configured method.
type Dispatcher interface {
	Handles(method string) bool
	Send(ctx context.Context, method string, user models.User, claimCase *models.ClaimCase, records []models.ClaimRecord) error
}
