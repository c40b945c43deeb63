// Package gold pivots the single-price dataset into one row per rate card
// with a development_and_implementation price per SFIA level.
package gold

import (
	"fmt"
	"sort"

	"github.com/okian/ratecards/internal/domain/model"
)

type pivotKey struct {
	id       int
	company  string
	location model.LocationType
}

// Pivot builds the gold table. Rows are keyed by (rate card id, company,
// location type) and sorted on that key; level columns follow SFIA order
// with unknown names appended alphabetically. Levels a rate card lacks are
// absent from its map. A document missing from dim fails with
// ErrUnknownDocument; a repeated key and level fails with PivotConflictError.
func Pivot(rows []model.NormalizedRow, dim Dimension) (model.GoldTable, error) {
	index := make(map[pivotKey]*model.GoldRow)
	var keys []pivotKey
	levels := make(map[string]struct{})

	for _, r := range rows {
		id, ok := dim.ID(r.SourceDocumentID)
		if !ok {
			return model.GoldTable{}, fmt.Errorf("%w: %s", model.ErrUnknownDocument, r.SourceDocumentID)
		}
		k := pivotKey{id: id, company: Company(r.SourceDocumentID), location: r.LocationType}
		g, ok := index[k]
		if !ok {
			g = &model.GoldRow{
				RateCardID:   k.id,
				Company:      k.company,
				LocationType: k.location,
				Levels:       make(map[string]string),
			}
			index[k] = g
			keys = append(keys, k)
		}
		if _, dup := g.Levels[r.LevelName]; dup {
			return model.GoldTable{}, &model.PivotConflictError{
				RateCardID:   k.id,
				Company:      k.company,
				LocationType: k.location,
				LevelName:    r.LevelName,
			}
		}
		g.Levels[r.LevelName] = r.Price(model.DevelopmentAndImplementation)
		levels[r.LevelName] = struct{}{}
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.id != b.id {
			return a.id < b.id
		}
		if a.company != b.company {
			return a.company < b.company
		}
		return a.location < b.location
	})

	out := model.GoldTable{
		LevelNames: orderLevels(levels),
		Rows:       make([]model.GoldRow, 0, len(keys)),
	}
	for _, k := range keys {
		out.Rows = append(out.Rows, *index[k])
	}
	return out, nil
}

func orderLevels(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := model.LevelRank(out[i]), model.LevelRank(out[j])
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		}
		return out[i] < out[j]
	})
	return out
}
