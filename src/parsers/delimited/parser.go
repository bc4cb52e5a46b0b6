// src/parsers/delimited/parser.go
package delimited

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/claimfolio/src/models"
)

type CSVParser struct{}

func NewParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads a header line followed by data rows. Blank rows are skipped but
// still counted, so row numbers match what the user sees in the file.
func (p *CSVParser) Parse(file io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file has no header row")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []models.RawRow
	for number := 1; ; number++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", number, err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, models.RowFromRecord(number, header, record))
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
