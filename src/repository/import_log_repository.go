package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

type ImportLogRepository struct {
	db *sql.DB
}

func NewImportLogRepository(db *sql.DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// Log appends import log entries. Entries without CreatedAt are stamped now.
func (r *ImportLogRepository) Log(ctx context.Context, entries ...models.ImportLog) error {
	if len(entries) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO import_logs
			(import_job_id, status, row_number, error_message, row_data, user_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now()
			}
			rowData, err := json.Marshal(e.RowData)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", e.RowNumber, err)
			}
			if _, err := stmt.ExecContext(ctx, e.ImportJobID, string(e.Status), e.RowNumber, e.ErrorMessage,
				string(rowData), e.UserID, utils.FormatDBTime(e.CreatedAt)); err != nil {
				return fmt.Errorf("failed to write import log for row %d: %w", e.RowNumber, err)
			}
		}
		return nil
	})
}

// ListByJob returns the log of one job ordered by row number.
func (r *ImportLogRepository) ListByJob(ctx context.Context, jobID string) ([]models.ImportLog, error) {
	return r.query(ctx, `SELECT id, import_job_id, status, row_number, error_message, row_data, user_id, created_at
		FROM import_logs WHERE import_job_id = ? ORDER BY row_number, id`, jobID)
}

// ErrorJobsForUser groups a user's failed rows by job, most recent job first.
func (r *ImportLogRepository) ErrorJobsForUser(ctx context.Context, userID int64) ([]models.ImportJobErrors, error) {
	logs, err := r.query(ctx, `SELECT id, import_job_id, status, row_number, error_message, row_data, user_id, created_at
		FROM import_logs WHERE user_id = ? AND status = ? ORDER BY created_at DESC, import_job_id, row_number, id`,
		userID, string(models.ImportStatusError))
	if err != nil {
		return nil, err
	}

	var jobs []models.ImportJobErrors
	index := make(map[string]int)
	for _, l := range logs {
		i, ok := index[l.ImportJobID]
		if !ok {
			i = len(jobs)
			index[l.ImportJobID] = i
			jobs = append(jobs, models.ImportJobErrors{ImportJobID: l.ImportJobID, ImportDate: l.CreatedAt})
		}
		jobs[i].ErrorCount++
		jobs[i].Errors = append(jobs[i].Errors, l)
	}
	return jobs, nil
}

func (r *ImportLogRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.ImportLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ImportLog
	for rows.Next() {
		var (
			l                 models.ImportLog
			status, createdAt string
			message, rowData  sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.ImportJobID, &status, &l.RowNumber, &message, &rowData, &l.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		l.Status = models.ImportStatus(status)
		l.ErrorMessage = message.String
		if rowData.Valid && rowData.String != "" && rowData.String != "null" {
			if err := json.Unmarshal([]byte(rowData.String), &l.RowData); err != nil {
				return nil, fmt.Errorf("failed to decode row data of import log %d: %w", l.ID, err)
			}
		}
		if l.CreatedAt, err = utils.ParseDBTime(createdAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
