package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

type ClaimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// BulkCreate persists one group of claim records as a single transaction and
// returns them with their ids.
func (r *ClaimRepository) BulkCreate(ctx context.Context, records []models.ClaimRecord) ([]models.ClaimRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	saved := make([]models.ClaimRecord, len(records))
	copy(saved, records)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO claim_records
			(batch_id, symbol, company_name, quantity_stock, value_per_stock, amount, claim_date, status,
			 user_id, company_id, lot_id, case_id, format_sent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range saved {
			c := &saved[i]
			res, err := stmt.ExecContext(ctx, c.BatchID, c.Symbol, c.CompanyName, c.QuantityStock, c.ValuePerStock,
				c.Amount, utils.FormatDBTime(c.ClaimDate), c.Status, c.UserID, nullableID(c.CompanyID), c.LotID, c.CaseID, c.FormatSent)
			if err != nil {
				return fmt.Errorf("failed to insert claim record for lot %d: %w", c.LotID, err)
			}
			if c.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// MarkFormatSent flags the records whose claim package went out.
func (r *ClaimRepository) MarkFormatSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE claim_records SET format_sent = 1 WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return fmt.Errorf("failed to mark claim records as sent: %w", err)
	}
	return nil
}

// DeleteBatches removes every record of the given batches in one transaction.
func (r *ClaimRepository) DeleteBatches(ctx context.Context, batchIDs []string) error {
	if len(batchIDs) == 0 {
		return nil
	}
	args := make([]interface{}, len(batchIDs))
	for i, id := range batchIDs {
		args[i] = id
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `DELETE FROM claim_records WHERE batch_id IN (` + placeholders(len(batchIDs)) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete claim batches: %w", err)
		}
		return nil
	})
}

// ListByCase returns every claim record of a case by id.
func (r *ClaimRepository) ListByCase(ctx context.Context, caseID int64) ([]models.ClaimRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, batch_id, symbol, company_name, quantity_stock, value_per_stock, amount,
		claim_date, status, user_id, company_id, lot_id, case_id, format_sent
		FROM claim_records WHERE case_id = ? ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claim records: %w", err)
	}
	defer rows.Close()

	var records []models.ClaimRecord
	for rows.Next() {
		var (
			c         models.ClaimRecord
			claimDate string
			companyID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.BatchID, &c.Symbol, &c.CompanyName, &c.QuantityStock, &c.ValuePerStock, &c.Amount,
			&claimDate, &c.Status, &c.UserID, &companyID, &c.LotID, &c.CaseID, &c.FormatSent); err != nil {
			return nil, fmt.Errorf("failed to scan claim record: %w", err)
		}
		if c.ClaimDate, err = utils.ParseDBTime(claimDate); err != nil {
			return nil, err
		}
		c.CompanyID = companyID.Int64
		records = append(records, c)
	}
	return records, rows.Err()
}
