package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

// ErrLotAlreadyClosed means a planned close hit a lot some other writer closed first.
var ErrLotAlreadyClosed = errors.New("lot already closed")

const lotColumns = `id, lot_number, name, symbol, start_date, end_date, quantity, cost_per_stock, amount, activity, closed, user_id, company_id`

type LotRepository struct {
	db *sql.DB
}

func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// ListBySymbol returns the whole lot history of one user and symbol by lot number.
func (r *LotRepository) ListBySymbol(ctx context.Context, userID int64, symbol string) ([]models.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE user_id = ? AND symbol = ? ORDER BY lot_number, id`
	return r.query(ctx, query, userID, symbol)
}

// ListForCompany returns the lots of a company and symbol that started on or
// before until, by start date then id. Finer window checks belong to the caller.
func (r *LotRepository) ListForCompany(ctx context.Context, companyID int64, symbol string, until time.Time) ([]models.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE company_id = ? AND symbol = ? AND start_date IS NOT NULL AND start_date <= ?
		ORDER BY start_date, id`
	return r.query(ctx, query, companyID, symbol, utils.FormatDBTime(until))
}

// Apply commits a lot mutation atomically: every close and every create, or none.
// Created lots are returned with their ids.
func (r *LotRepository) Apply(ctx context.Context, m models.LotMutation) ([]models.Lot, error) {
	if m.Empty() {
		return nil, nil
	}
	created := make([]models.Lot, 0, len(m.Create))
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range m.Close {
			res, err := tx.ExecContext(ctx, `UPDATE lots SET closed = 1 WHERE id = ? AND closed = 0`, id)
			if err != nil {
				return fmt.Errorf("failed to close lot %d: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to close lot %d: %w", id, err)
			}
			if n != 1 {
				return fmt.Errorf("lot %d: %w", id, ErrLotAlreadyClosed)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO lots
			(lot_number, name, symbol, start_date, end_date, quantity, cost_per_stock, amount, activity, closed, user_id, company_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, l := range m.Create {
			res, err := stmt.ExecContext(ctx, l.LotNumber, l.Name, l.Symbol, nullableTime(l.StartDate), nullableTime(l.EndDate),
				l.Quantity, l.CostPerStock, l.Amount, l.Activity, l.Closed, l.UserID, nullableID(l.CompanyID))
			if err != nil {
				return fmt.Errorf("failed to insert lot %s: %w", l.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			l.ID = id
			created = append(created, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *LotRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Lot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []models.Lot
	for rows.Next() {
		var (
			l          models.Lot
			start, end sql.NullString
			companyID  sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.LotNumber, &l.Name, &l.Symbol, &start, &end, &l.Quantity,
			&l.CostPerStock, &l.Amount, &l.Activity, &l.Closed, &l.UserID, &companyID); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		if l.StartDate, err = scanTime(start); err != nil {
			return nil, err
		}
		if l.EndDate, err = scanTime(end); err != nil {
			return nil, err
		}
		l.CompanyID = companyID.Int64
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
