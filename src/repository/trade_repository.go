package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

type TradeRepository struct {
	db *sql.DB
}

func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// BulkCreate inserts the records in one transaction and sets their ids.
func (r *TradeRepository) BulkCreate(ctx context.Context, records []models.TradeRecord) error {
	if len(records) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO trade_records
			(user_id, company_id, import_job_id, data_for, trade_date, account, account_name, account_type, account_number,
			 activity, description, symbol, quantity, cost_per_stock, amount, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range records {
			rec := &records[i]
			res, err := stmt.ExecContext(ctx, rec.UserID, nullableID(rec.CompanyID), rec.ImportJobID, rec.DataFor,
				utils.FormatDBTime(rec.TradeDate), rec.Account, rec.AccountName, rec.AccountType, rec.AccountNumber,
				rec.Activity, rec.Description, rec.Symbol, rec.Quantity, rec.CostPerStock, rec.Amount, rec.Notes)
			if err != nil {
				return fmt.Errorf("failed to insert trade record for %s: %w", rec.Symbol, err)
			}
			if rec.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByJob returns the records written by one import job in insertion order.
func (r *TradeRepository) ListByJob(ctx context.Context, jobID string) ([]models.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, company_id, import_job_id, data_for, trade_date, account,
		account_name, account_type, account_number, activity, description, symbol, quantity, cost_per_stock, amount, notes
		FROM trade_records WHERE import_job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade records: %w", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var (
			rec                                            models.TradeRecord
			companyID                                      sql.NullInt64
			dataFor, account, accountName, accountType     sql.NullString
			accountNumber, description, notes, importJobID sql.NullString
			tradeDate                                      string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &companyID, &importJobID, &dataFor, &tradeDate, &account,
			&accountName, &accountType, &accountNumber, &rec.Activity, &description, &rec.Symbol, &rec.Quantity,
			&rec.CostPerStock, &rec.Amount, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		if rec.TradeDate, err = utils.ParseDBTime(tradeDate); err != nil {
			return nil, err
		}
		rec.CompanyID = companyID.Int64
		rec.ImportJobID = importJobID.String
		rec.DataFor = dataFor.String
		rec.Account = account.String
		rec.AccountName = accountName.String
		rec.AccountType = accountType.String
		rec.AccountNumber = accountNumber.String
		rec.Description = description.String
		rec.Notes = notes.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
