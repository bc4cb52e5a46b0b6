package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

// Window is an inclusive eligibility range, whole days in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewEligibilityWindow widens from/to to 00:00:00 and 23:59:59 of their days.
func NewEligibilityWindow(from, to time.Time) (Window, error) {
	w := Window{Start: utils.StartOfDay(from), End: utils.EndOfDay(to)}
	if w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("eligibility window ends (%s) before it starts (%s)", utils.DayKey(to), utils.DayKey(from))
	}
	return w, nil
}

// Overlaps reports whether a lot was held during the window. Buy-class lots
// without an end date are still held; sell-class artifacts need both ends.
// Lots of any other class, and lots without a start date, never overlap.
func (w Window) Overlaps(lot models.Lot, patterns Classifier) bool {
	if lot.StartDate == nil || lot.StartDate.After(w.End) {
		return false
	}
	switch patterns.Classify(lot.Activity) {
	case ActivityBuy:
		return lot.EndDate == nil || !lot.EndDate.Before(w.Start)
	case ActivitySell:
		return lot.EndDate != nil && !lot.EndDate.Before(w.Start)
	default:
		return false
	}
}

// EligibleLots filters lots by the window, open or closed alike, ordered by
// start date then id.
func EligibleLots(lots []models.Lot, w Window, patterns Classifier) []models.Lot {
	var out []models.Lot
	for _, l := range lots {
		if w.Overlaps(l, patterns) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartDate, out[j].StartDate
		if !a.Equal(*b) {
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
