// src/parsers/spreadsheet/parser.go
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/models"
	"github.com/xuri/excelize/v2"
)

type XLSXParser struct{}

func NewParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet of a workbook, header in the first row. Cells are
// taken raw, so dates arrive as serial day numbers.
func (p *XLSXParser) Parse(file io.Reader) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Warn("failed to close workbook", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet '%s' has no header row", sheet)
	}

	header := records[0]
	var rows []models.RawRow
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, models.RowFromRecord(i+1, header, record))
	}
	logger.Get().Debug("Parsed workbook", "sheet", sheet, "rows", len(rows))
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
