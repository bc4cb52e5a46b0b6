package processors

import (
	"fmt"
	"time"

	"github.com/username/claimfolio/src/utils"
)

// NoPrecedentBuyError rejects a symbol whose earliest activity in a batch is not
// a buy while the ledger holds no open lot to sell from.
type NoPrecedentBuyError struct {
	Symbol   string
	Activity string
}

func (e *NoPrecedentBuyError) Error() string {
	return fmt.Sprintf("symbol %s starts with '%s' and has no previous buy", e.Symbol, e.Activity)
}

// InsufficientLotError is returned when a sell cannot be matched against the
// open lots of its symbol. Outstanding is the quantity left unmatched.
type InsufficientLotError struct {
	Symbol      string
	Activity    string
	TradeDate   time.Time
	Outstanding int64
}

func (e *InsufficientLotError) Error() string {
	return fmt.Sprintf("not enough open lots of %s to apply %s on %s (%d shares unmatched)",
		e.Symbol, e.Activity, utils.DayKey(e.TradeDate), e.Outstanding)
}
