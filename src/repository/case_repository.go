package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, c *models.ClaimCase) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO claim_cases
		(ticker_symbol, company_name, exchange, lawsuit_type, law_firm, case_docket_number, company_id, value_per_share,
		 start_eligibility_date, final_eligibility_date, claim_status, method_send_claim_format, notification_email, claimed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TickerSymbol, c.CompanyName, c.Exchange, c.LawsuitType, c.LawFirm, c.CaseDocketNumber, nullableID(c.CompanyID),
		c.ValuePerShare, utils.FormatDBTime(c.StartEligibilityDate), utils.FormatDBTime(c.FinalEligibilityDate),
		c.ClaimStatus, c.MethodSendClaimFormat, c.NotificationEmail, c.Claimed)
	if err != nil {
		return fmt.Errorf("failed to create claim case %s: %w", c.TickerSymbol, err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// Get loads a case, ErrNotFound when it does not exist.
func (r *CaseRepository) Get(ctx context.Context, id int64) (*models.ClaimCase, error) {
	var (
		c           models.ClaimCase
		companyID   sql.NullInt64
		start, last string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, ticker_symbol, company_name, exchange, lawsuit_type, law_firm,
		case_docket_number, company_id, value_per_share, start_eligibility_date, final_eligibility_date, claim_status,
		method_send_claim_format, notification_email, claimed
		FROM claim_cases WHERE id = ?`, id).Scan(&c.ID, &c.TickerSymbol, &c.CompanyName, &c.Exchange, &c.LawsuitType,
		&c.LawFirm, &c.CaseDocketNumber, &companyID, &c.ValuePerShare, &start, &last, &c.ClaimStatus,
		&c.MethodSendClaimFormat, &c.NotificationEmail, &c.Claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim case %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claim case %d: %w", id, err)
	}
	c.CompanyID = companyID.Int64
	if c.StartEligibilityDate, err = utils.ParseDBTime(start); err != nil {
		return nil, err
	}
	if c.FinalEligibilityDate, err = utils.ParseDBTime(last); err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkClaimed flips the claimed flag of an unclaimed case. It reports false
// when the case was already claimed, so only one run can hold a case.
func (r *CaseRepository) MarkClaimed(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE claim_cases SET claimed = 1 WHERE id = ? AND claimed = 0`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark claim case %d as claimed: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark claim case %d as claimed: %w", id, err)
	}
	return n == 1, nil
}

// ReleaseClaim clears the claimed flag after a run that stored nothing.
func (r *CaseRepository) ReleaseClaim(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE claim_cases SET claimed = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to release claim case %d: %w", id, err)
	}
	return nil
}
