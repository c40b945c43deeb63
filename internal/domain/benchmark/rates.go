// Package benchmark derives market statistics from the single-price
// dataset: per-company day rates for a level, descriptive statistics, a
// truncated-normal Monte Carlo and where a reference rate sits within it.
package benchmark

import (
	"sort"
	"strconv"

	"github.com/okian/ratecards/internal/domain/gold"
	"github.com/okian/ratecards/internal/domain/model"
)

// CompanyRate is one company's day rate for a level.
type CompanyRate struct {
	Company   string   `json:"company"`
	Rate      float64  `json:"rate"`
	RateCards []string `json:"rate_cards"`
}

// RatesForLevel collects development_and_implementation prices for one
// level. Each rate card contributes its highest price, which keeps the
// onshore figure when location is empty; companies with several rate cards
// get the mean. Cells that are not numbers are ignored.
func RatesForLevel(single []model.NormalizedRow, level string, location model.LocationType) []CompanyRate {
	perCard := make(map[string]float64)
	for _, r := range single {
		if r.LevelName != level {
			continue
		}
		if location != "" && r.LocationType != location {
			continue
		}
		v, err := strconv.ParseFloat(r.Price(model.DevelopmentAndImplementation), 64)
		if err != nil {
			continue
		}
		if cur, ok := perCard[r.SourceDocumentID]; !ok || v > cur {
			perCard[r.SourceDocumentID] = v
		}
	}

	byCompany := make(map[string]*CompanyRate)
	for doc, v := range perCard {
		name := gold.Company(doc)
		cr, ok := byCompany[name]
		if !ok {
			cr = &CompanyRate{Company: name}
			byCompany[name] = cr
		}
		cr.Rate += v
		cr.RateCards = append(cr.RateCards, doc)
	}

	out := make([]CompanyRate, 0, len(byCompany))
	for _, cr := range byCompany {
		cr.Rate /= float64(len(cr.RateCards))
		sort.Strings(cr.RateCards)
		out = append(out, *cr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate < out[j].Rate
		}
		return out[i].Company < out[j].Company
	})
	return out
}

// Values returns the rates alone.
func Values(rates []CompanyRate) []float64 {
	out := make([]float64, len(rates))
	for i, r := range rates {
		out[i] = r.Rate
	}
	return out
}
