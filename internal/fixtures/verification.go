package fixtures

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/ratecards/internal/domain/gold"
	"github.com/okian/ratecards/internal/domain/model"
)

// Expected is the gold output implied by a set of cards, keyed by
// "company/location" and then level name.
type Expected map[string]map[string]string

func expectedKey(company string, loc model.LocationType) string {
	return company + "/" + string(loc)
}

// ExpectedGold derives the gold rows the pipeline should produce. Levels
// carrying a price range leave the single-price dataset and so are absent.
func ExpectedGold(cards []Card) Expected {
	out := make(Expected)
	for _, c := range cards {
		company := gold.Company(c.DocumentID)
		out[expectedKey(company, model.Onshore)] = levelPrices(c.Onshore, c.RangeLevel)
		if c.Offshore != nil {
			out[expectedKey(company, model.Offshore)] = levelPrices(c.Offshore, -1)
		}
	}
	return out
}

func levelPrices(prices [][model.PriceCategoryCount]int64, rangeLevel int) map[string]string {
	m := make(map[string]string, len(prices))
	for l, name := range model.SFIALevels() {
		if l == rangeLevel {
			continue
		}
		m[name] = strconv.FormatInt(prices[l][model.DevelopmentAndImplementation], 10)
	}
	return m
}

// Rows counts the gold rows expected.
func (e Expected) Rows() int { return len(e) }

// VerifyGold compares a gold table with the expectation and returns every
// difference found.
func VerifyGold(want Expected, got model.GoldTable) []string {
	var diffs []string
	seen := make(map[string]bool, len(got.Rows))
	for _, row := range got.Rows {
		key := expectedKey(row.Company, row.LocationType)
		seen[key] = true
		levels, ok := want[key]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("unexpected gold row %s", key))
			continue
		}
		for name, price := range levels {
			if row.Levels[name] != price {
				diffs = append(diffs, fmt.Sprintf("%s %s: got %q, want %q", key, name, row.Levels[name], price))
			}
		}
		for name := range row.Levels {
			if _, ok := levels[name]; !ok {
				diffs = append(diffs, fmt.Sprintf("%s: unexpected level %q", key, name))
			}
		}
	}
	for key := range want {
		if !seen[key] {
			diffs = append(diffs, fmt.Sprintf("missing gold row %s", key))
		}
	}
	sort.Strings(diffs)
	return diffs
}

// Summary renders diffs for a log line.
func Summary(diffs []string, limit int) string {
	if len(diffs) <= limit {
		return strings.Join(diffs, "; ")
	}
	return strings.Join(diffs[:limit], "; ") + fmt.Sprintf("; and %d more", len(diffs)-limit)
}
