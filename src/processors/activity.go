package processors

import (
	"fmt"
	"regexp"
	"strings"
)

// ActivityClass is the closed set of kinds an activity label can fall into.
type ActivityClass int

const (
	ActivityOther ActivityClass = iota
	ActivityBuy
	ActivitySell
)

func (c ActivityClass) String() string {
	switch c {
	case ActivityBuy:
		return "BUY"
	case ActivitySell:
		return "SELL"
	default:
		return "OTHER"
	}
}

// DefaultBuyLabels and DefaultSellLabels are used when no pattern file is configured.
var (
	DefaultBuyLabels  = []string{"BUY", "INCOME"}
	DefaultSellLabels = []string{"SELL"}
)

const regexMetaChars = `\.+*?()|[]{}^$`

type activityMatcher struct {
	label string
	re    *regexp.Regexp
}

func (m activityMatcher) match(upperActivity string) bool {
	if m.re != nil {
		return m.re.MatchString(upperActivity)
	}
	return strings.Contains(upperActivity, m.label)
}

// PatternTable classifies free-text activity labels. A label holding a regex
// metacharacter is matched as a case-insensitive regex, anything else by
// case-insensitive containment. Buy labels win over sell labels.
type PatternTable struct {
	buy  []activityMatcher
	sell []activityMatcher
}

// NewPatternTable compiles the buy and sell labels. At least one buy label is required.
func NewPatternTable(buyLabels, sellLabels []string) (*PatternTable, error) {
	if len(buyLabels) == 0 {
		return nil, fmt.Errorf("pattern table needs at least one buy label")
	}
	buy, err := compileMatchers(buyLabels)
	if err != nil {
		return nil, fmt.Errorf("buy labels: %w", err)
	}
	sell, err := compileMatchers(sellLabels)
	if err != nil {
		return nil, fmt.Errorf("sell labels: %w", err)
	}
	return &PatternTable{buy: buy, sell: sell}, nil
}

// DefaultPatternTable returns the BUY/INCOME vs SELL table.
func DefaultPatternTable() *PatternTable {
	t, err := NewPatternTable(DefaultBuyLabels, DefaultSellLabels)
	if err != nil {
		panic(err)
	}
	return t
}

func compileMatchers(labels []string) ([]activityMatcher, error) {
	matchers := make([]activityMatcher, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if strings.ContainsAny(label, regexMetaChars) {
			re, err := regexp.Compile("(?i)" + label)
			if err != nil {
				return nil, fmt.Errorf("invalid activity pattern '%s': %w", label, err)
			}
			matchers = append(matchers, activityMatcher{label: label, re: re})
			continue
		}
		matchers = append(matchers, activityMatcher{label: strings.ToUpper(label)})
	}
	return matchers, nil
}

// Classify maps an activity label to Buy, Sell or Other.
func (t *PatternTable) Classify(activity string) ActivityClass {
	a := strings.ToUpper(strings.TrimSpace(activity))
	if a == "" {
		return ActivityOther
	}
	for _, m := range t.buy {
		if m.match(a) {
			return ActivityBuy
		}
	}
	for _, m := range t.sell {
		if m.match(a) {
			return ActivitySell
		}
	}
	return ActivityOther
}
