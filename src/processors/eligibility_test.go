package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/models"
)

func lotAt(id int64, activity string, start, end *time.Time, closed bool) models.Lot {
	return models.Lot{ID: id, Activity: activity, StartDate: start, EndDate: end, Closed: closed}
}

func ptr(t time.Time) *time.Time { return &t }

func TestNewEligibilityWindow(t *testing.T) {
	w, err := NewEligibilityWindow(day(5).Add(13*time.Hour), day(10).Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, day(5).Equal(w.Start))
	assert.True(t, day(10).Add(23*time.Hour+59*time.Minute+59*time.Second).Equal(w.End))

	_, err = NewEligibilityWindow(day(10), day(5))
	assert.Error(t, err)
}

func TestWindowOverlaps(t *testing.T) {
	table := DefaultPatternTable()
	w, err := NewEligibilityWindow(day(10), day(20))
	require.NoError(t, err)

	cases := []struct {
		name string
		lot  models.Lot
		want bool
	}{
		{"open buy started before", lotAt(1, "BUY", ptr(day(1)), nil, false), true},
		{"open buy started inside", lotAt(2, "BUY", ptr(day(15)), nil, false), true},
		{"open buy started on last day", lotAt(3, "BUY", ptr(day(20).Add(18*time.Hour)), nil, false), true},
		{"buy started after", lotAt(4, "BUY", ptr(day(21)), nil, false), false},
		{"closed buy still counts", lotAt(5, "INCOME", ptr(day(1)), nil, true), true},
		{"sell artifact inside", lotAt(6, "SELL", ptr(day(1)), ptr(day(12)), true), true},
		{"sell artifact ended before", lotAt(7, "SELL", ptr(day(1)), ptr(day(9)), true), false},
		{"sell artifact ended on first day", lotAt(8, "SELL", ptr(day(10).Add(10*time.Hour)), ptr(day(10).Add(10*time.Hour)), true), true},
		{"sell artifact without end", lotAt(9, "SELL", ptr(day(1)), nil, true), false},
		{"selling marker has no start", lotAt(10, "SELL", nil, ptr(day(12)), true), false},
		{"other activity", lotAt(11, "DIVIDEND", ptr(day(1)), nil, false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Overlaps(tc.lot, table))
		})
	}
}

func TestOpenLotEligibleRegardlessOfWindowStart(t *testing.T) {
	table := DefaultPatternTable()
	lot := lotAt(1, "BUY", ptr(day(3)), nil, false)
	for start := 1; start <= 28; start++ {
		w, err := NewEligibilityWindow(day(start), day(28))
		require.NoError(t, err)
		assert.True(t, w.Overlaps(lot, table), "window start day %d", start)
	}
}

func TestEligibleLotsOrdering(t *testing.T) {
	table := DefaultPatternTable()
	w, err := NewEligibilityWindow(day(1), day(30))
	require.NoError(t, err)

	lots := []models.Lot{
		lotAt(9, "BUY", ptr(day(4)), nil, false),
		lotAt(3, "SELL", ptr(day(2)), ptr(day(5)), true),
		lotAt(7, "BUY", ptr(day(2)), nil, false),
		lotAt(1, "BUY", ptr(day(31)), nil, false),
	}
	got := EligibleLots(lots, w, table)
	var ids []int64
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []int64{3, 7, 9}, ids)
}
