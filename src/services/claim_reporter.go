package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/username/claimfolio/src/models"
)

// ClaimReporter renders the claim form sent to a case's notification address.
type ClaimReporter struct{}

func NewClaimReporter() *ClaimReporter {
	return &ClaimReporter{}
}

// RenderPDF builds the claim form of one user: case header, client block and
// one line per claim record with the total at the bottom.
func (r *ClaimReporter) RenderPDF(user models.User, claimCase *models.ClaimCase, records []models.ClaimRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Claim Action - %s (%s)", claimCase.CompanyName, claimCase.TickerSymbol))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Law firm: %s", claimCase.LawFirm),
		fmt.Sprintf("Docket: %s", claimCase.CaseDocketNumber),
		fmt.Sprintf("Eligibility: %s to %s", claimCase.StartEligibilityDate.Format("2006-01-02"), claimCase.FinalEligibilityDate.Format("2006-01-02")),
		fmt.Sprintf("Value per share: %s", claimCase.ValuePerShare.StringFixed(4)),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Client")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		user.FullName(),
		user.Address,
		user.Country,
		user.PhoneNumber,
		user.Email,
	} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Lot", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Symbol", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Value/Share", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	total := decimal.Zero
	for _, rec := range records {
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", rec.LotID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, rec.Symbol, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", rec.QuantityStock), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, rec.ValuePerStock.StringFixed(4), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, rec.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total = total.Add(rec.Amount)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(130, 6, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 6, total.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render claim form: %w", err)
	}
	return buf.Bytes(), nil
}
