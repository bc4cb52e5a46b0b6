package parsers

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/security/validation"
	"github.com/username/claimfolio/src/utils"
)

// costPlaces is the precision cost per share is stored with.
const costPlaces = 6

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// MalformedRowError reports an input row that cannot become a trade record.
type MalformedRowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
}

// ToTradeRecord validates a raw row and converts it into a trade record owned by owner.
// Quantity and amount keep their magnitude only; the activity carries the direction.
func ToTradeRecord(row models.RawRow, owner models.User) (models.TradeRecord, error) {
	malformed := func(field, reason string) error {
		return &MalformedRowError{Row: row.Number, Field: field, Reason: reason}
	}

	symbol := normalizeSymbol(row.Get(models.ColSymbol))
	if symbol == "" {
		return models.TradeRecord{}, malformed(models.ColSymbol, "is required")
	}
	activity := validation.CleanText(row.Get(models.ColActivity))
	if activity == "" {
		return models.TradeRecord{}, malformed(models.ColActivity, "is required")
	}

	rawDate := row.Get(models.ColTradeDate)
	if rawDate == "" {
		return models.TradeRecord{}, malformed(models.ColTradeDate, "is required")
	}
	tradeDate, err := utils.ParseTradeDate(rawDate)
	if err != nil {
		return models.TradeRecord{}, malformed(models.ColTradeDate, err.Error())
	}

	rawQty := row.Get(models.ColQuantity)
	if rawQty == "" {
		return models.TradeRecord{}, malformed(models.ColQuantity, "is required")
	}
	qty, err := utils.ParseDecimal(rawQty)
	if err != nil {
		return models.TradeRecord{}, malformed(models.ColQuantity, err.Error())
	}
	qty = qty.Abs()
	switch {
	case !qty.IsInteger():
		return models.TradeRecord{}, malformed(models.ColQuantity, fmt.Sprintf("'%s' is not a whole number of shares", rawQty))
	case qty.IsZero():
		return models.TradeRecord{}, malformed(models.ColQuantity, "must not be zero")
	case qty.GreaterThan(maxQuantity):
		return models.TradeRecord{}, malformed(models.ColQuantity, fmt.Sprintf("'%s' is out of range", rawQty))
	}

	rawAmount := row.Get(models.ColAmount)
	if rawAmount == "" {
		return models.TradeRecord{}, malformed(models.ColAmount, "is required")
	}
	amount, err := utils.ParseDecimal(rawAmount)
	if err != nil {
		return models.TradeRecord{}, malformed(models.ColAmount, err.Error())
	}
	amount = amount.Abs()

	return models.TradeRecord{
		UserID:        owner.ID,
		CompanyID:     owner.CompanyID,
		DataFor:       validation.CleanText(row.Get(models.ColDataFor)),
		TradeDate:     tradeDate,
		Account:       validation.CleanText(row.Get(models.ColAccount)),
		AccountName:   validation.CleanText(row.Get(models.ColAccountName)),
		AccountType:   validation.CleanText(row.Get(models.ColAccountType)),
		AccountNumber: validation.CleanText(row.Get(models.ColAccountNumber)),
		Activity:      activity,
		Description:   validation.CleanText(row.Get(models.ColDescription)),
		Symbol:        symbol,
		Quantity:      qty.IntPart(),
		CostPerStock:  amount.DivRound(qty, costPlaces),
		Amount:        amount,
		Notes:         validation.CleanText(row.Get(models.ColNotes)),
		SourceRows:    []int{row.Number},
	}, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(validation.CleanText(s))
}
