package models

import "time"

type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "SUCCESS"
	ImportStatusError   ImportStatus = "ERROR"
)

// ImportLog records the outcome of one input row of an import job.
type ImportLog struct {
	ID           int64             `json:"id,omitempty"`
	ImportJobID  string            `json:"import_job_id"`
	Status       ImportStatus      `json:"status"`
	RowNumber    int               `json:"row_number"`
	ErrorMessage string            `json:"error_message,omitempty"`
	RowData      map[string]string `json:"row_data,omitempty"`
	UserID       int64             `json:"user_id"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ImportJobErrors groups the failed rows of one job.
type ImportJobErrors struct {
	ImportJobID string      `json:"import_job_id"`
	ImportDate  time.Time   `json:"import_date"`
	ErrorCount  int         `json:"error_count"`
	Errors      []ImportLog `json:"errors"`
}
