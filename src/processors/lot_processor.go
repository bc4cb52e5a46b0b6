// src/processors/lot_processor.go
package processors

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/claimfolio/src/models"
)

// LotProcessor plans the lot writes for one buy or one sell. It never touches
// storage: the caller commits the returned mutation as a single unit.
type LotProcessor struct {
	patterns Classifier
}

func NewLotProcessor(patterns Classifier) *LotProcessor {
	return &LotProcessor{patterns: patterns}
}

// NextLotNumber is one more than the highest lot number among buy-class lots.
func (p *LotProcessor) NextLotNumber(lots []models.Lot) int {
	highest := 0
	for _, l := range lots {
		if p.patterns.Classify(l.Activity) == ActivityBuy && l.LotNumber > highest {
			highest = l.LotNumber
		}
	}
	return highest + 1
}

// OpenLots returns the buy-class lots not yet closed, oldest lot number first.
func (p *LotProcessor) OpenLots(lots []models.Lot) []models.Lot {
	var open []models.Lot
	for _, l := range lots {
		if !l.Closed && p.patterns.Classify(l.Activity) == ActivityBuy {
			open = append(open, l)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if open[i].LotNumber != open[j].LotNumber {
			return open[i].LotNumber < open[j].LotNumber
		}
		return open[i].ID < open[j].ID
	})
	return open
}

// OldestOpen returns the open lot with the smallest lot number, or nil.
func (p *LotProcessor) OldestOpen(lots []models.Lot) *models.Lot {
	open := p.OpenLots(lots)
	if len(open) == 0 {
		return nil
	}
	return &open[0]
}

// PlanBuy opens a new lot for tx on top of the existing history of its symbol.
func (p *LotProcessor) PlanBuy(history []models.Lot, tx models.TradeRecord) (models.LotMutation, error) {
	if tx.Quantity <= 0 {
		return models.LotMutation{}, fmt.Errorf("buy of %s on %s has non-positive quantity %d", tx.Symbol, tx.TradeDate.Format("2006-01-02"), tx.Quantity)
	}
	number := p.NextLotNumber(history)
	start := tx.TradeDate
	lot := models.Lot{
		LotNumber:    number,
		Name:         models.LotName(number),
		Symbol:       tx.Symbol,
		StartDate:    &start,
		Quantity:     tx.Quantity,
		CostPerStock: tx.CostPerStock,
		Amount:       tx.Amount,
		Activity:     tx.Activity,
		UserID:       tx.UserID,
		CompanyID:    tx.CompanyID,
	}
	return models.LotMutation{Create: []models.Lot{lot}}, nil
}

// PlanSell matches tx against the open lots of history, oldest first.
//
// The plan always holds a closed selling marker at the oldest lot's basis. Each
// consumed lot is closed and paired with a _FINISHED lot; a lot only partly
// consumed gets a _DISCOUNTED lot for the sold part and reopens under the same
// lot number for the rest. When the open lots run out before the sell is
// matched an *InsufficientLotError is returned and nothing is planned.
func (p *LotProcessor) PlanSell(history []models.Lot, tx models.TradeRecord) (models.LotMutation, error) {
	if tx.Quantity <= 0 {
		return models.LotMutation{}, fmt.Errorf("sell of %s on %s has non-positive quantity %d", tx.Symbol, tx.TradeDate.Format("2006-01-02"), tx.Quantity)
	}
	open := p.OpenLots(history)
	if len(open) == 0 {
		return models.LotMutation{}, p.insufficient(tx, tx.Quantity)
	}

	sellDate := tx.TradeDate
	oldest := open[0]
	var m models.LotMutation
	m.Create = append(m.Create, models.Lot{
		LotNumber:    oldest.LotNumber,
		Name:         models.LotName(oldest.LotNumber) + models.SoldSuffix,
		Symbol:       tx.Symbol,
		EndDate:      &sellDate,
		Quantity:     tx.Quantity,
		CostPerStock: oldest.CostPerStock,
		Amount:       amountOf(oldest.CostPerStock, tx.Quantity),
		Activity:     tx.Activity,
		Closed:       true,
		UserID:       tx.UserID,
		CompanyID:    tx.CompanyID,
	})

	outstanding := tx.Quantity
	for _, lot := range open {
		if outstanding == 0 {
			break
		}
		m.Close = append(m.Close, lot.ID)
		switch {
		case lot.Quantity <= outstanding:
			m.Create = append(m.Create, closingArtifact(lot, tx, models.FinishedSuffix, lot.Quantity))
			outstanding -= lot.Quantity
		default:
			m.Create = append(m.Create,
				closingArtifact(lot, tx, models.DiscountedSuffix, outstanding),
				reopened(lot, lot.Quantity-outstanding),
			)
			outstanding = 0
		}
	}
	if outstanding > 0 {
		return models.LotMutation{}, p.insufficient(tx, outstanding)
	}
	return m, nil
}

func (p *LotProcessor) insufficient(tx models.TradeRecord, outstanding int64) error {
	return &InsufficientLotError{
		Symbol:      tx.Symbol,
		Activity:    tx.Activity,
		TradeDate:   tx.TradeDate,
		Outstanding: outstanding,
	}
}

func closingArtifact(lot models.Lot, tx models.TradeRecord, suffix string, qty int64) models.Lot {
	end := tx.TradeDate
	return models.Lot{
		LotNumber:    lot.LotNumber,
		Name:         models.LotName(lot.LotNumber) + suffix,
		Symbol:       lot.Symbol,
		StartDate:    lot.StartDate,
		EndDate:      &end,
		Quantity:     qty,
		CostPerStock: lot.CostPerStock,
		Amount:       amountOf(lot.CostPerStock, qty),
		Activity:     tx.Activity,
		Closed:       true,
		UserID:       lot.UserID,
		CompanyID:    lot.CompanyID,
	}
}

func reopened(lot models.Lot, qty int64) models.Lot {
	return models.Lot{
		LotNumber:    lot.LotNumber,
		Name:         models.LotName(lot.LotNumber),
		Symbol:       lot.Symbol,
		StartDate:    lot.StartDate,
		Quantity:     qty,
		CostPerStock: lot.CostPerStock,
		Amount:       amountOf(lot.CostPerStock, qty),
		Activity:     lot.Activity,
		UserID:       lot.UserID,
		CompanyID:    lot.CompanyID,
	}
}

func amountOf(cost decimal.Decimal, qty int64) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(qty))
}
