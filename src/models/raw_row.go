// src/models/raw_row.go
package models

import "strings"

// Column headers of a brokerage activity export. Lookups are case-insensitive.
const (
	ColDataFor       = "data for"
	ColTradeDate     = "trade date"
	ColAccount       = "account"
	ColAccountName   = "account name"
	ColAccountType   = "account type"
	ColAccountNumber = "account number"
	ColActivity      = "activity"
	ColDescription   = "description"
	ColSymbol        = "symbol"
	ColQuantity      = "quantity"
	ColAmount        = "amount"
	ColNotes         = "notes"
)

// RawRow is one data row handed over by an ingestion adapter, before any validation.
// Number is the 1-based position of the row below the header.
type RawRow struct {
	Number int               `json:"row_number"`
	Fields map[string]string `json:"fields"`
}

// Get returns the trimmed value of a column, "" when the column is absent.
func (r RawRow) Get(column string) string {
	if r.Fields == nil {
		return ""
	}
	return strings.TrimSpace(r.Fields[normalizeHeader(column)])
}

// RowFromRecord zips a header line and a record into a RawRow. Extra cells without
// a header are dropped, missing cells are left empty.
func RowFromRecord(number int, header, record []string) RawRow {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if i < len(record) {
			fields[key] = record[i]
		} else {
			fields[key] = ""
		}
	}
	return RawRow{Number: number, Fields: fields}
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
