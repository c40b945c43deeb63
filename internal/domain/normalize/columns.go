// Package normalize maps rate-card tables with heterogeneous headers onto the
// canonical level and price-category schema.
package normalize

import (
	"fmt"
	"strings"

	"github.com/okian/ratecards/internal/domain/model"
)

// LevelColumn is the canonical name of the first column.
const LevelColumn = "level"

// SynonymMode selects how the legacy category labels are mapped.
type SynonymMode string

const (
	// SynonymExact maps only when the whole cleaned header list equals the
	// legacy schema, in order.
	SynonymExact SynonymMode = "exact"
	// SynonymPerColumn maps every legacy label wherever it appears.
	SynonymPerColumn SynonymMode = "per_column"
)

// ParseSynonymMode validates a configured mode.
func ParseSynonymMode(s string) (SynonymMode, error) {
	switch SynonymMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SynonymExact:
		return SynonymExact, nil
	case SynonymPerColumn:
		return SynonymPerColumn, nil
	}
	return "", fmt.Errorf("%w: %q", ErrSynonymMode, s)
}

// legacySchema is the cleaned header list of rate cards that still use the
// older category labels.
var legacySchema = []string{
	LevelColumn,
	"strategy_and_architecture",
	"business_change",
	"solution_development_and_implementation",
	"service_management",
	"procurement_and_management_support",
	"client_interface",
}

var synonyms = map[string]string{
	"business_change":                         "change_and_transformation",
	"solution_development_and_implementation": "development_and_implementation",
	"service_management":                      "delivery_and_operation",
	"procurement_and_management_support":      "people_and_skills",
	"client_interface":                        "relationships_and_engagement",
}

// CleanColumnName turns a raw header into snake case: line breaks become
// spaces, spaces become underscores, letters are lowered.
func CleanColumnName(name string) string {
	r := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	s := r.Replace(name)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ToLower(s)
}

// RenameColumns returns the cleaned header list. The first column is always
// the level column whatever its raw label.
func RenameColumns(raw []string, mode SynonymMode) []string {
	out := make([]string, len(raw))
	for i, c := range raw {
		if i == 0 {
			out[i] = LevelColumn
			continue
		}
		out[i] = CleanColumnName(c)
	}

	switch mode {
	case SynonymPerColumn:
		for i, c := range out {
			if canonical, ok := synonyms[c]; ok {
				out[i] = canonical
			}
		}
	default:
		if equalStrings(out, legacySchema) {
			for i, c := range out {
				if canonical, ok := synonyms[c]; ok {
					out[i] = canonical
				}
			}
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var priceCellReplacer = strings.NewReplacer("£", "", "$", "", "€", "", ",", "")

// CleanPriceCell strips currency symbols, thousands separators and
// surrounding space. Applying it twice gives the same result.
func CleanPriceCell(cell string) string {
	return strings.TrimSpace(priceCellReplacer.Replace(cell))
}

// categoryIndex maps each canonical price column to its position in the
// cleaned header, or -1 when the table lacks it.
func categoryIndex(cols []string) (idx [model.PriceCategoryCount]int, unmapped []string) {
	for i := range idx {
		idx[i] = -1
	}
	for i, c := range cols {
		if i == 0 {
			continue
		}
		if cat, ok := model.PriceCategoryByName(c); ok {
			if idx[cat] < 0 {
				idx[cat] = i
			}
			continue
		}
		unmapped = append(unmapped, c)
	}
	return idx, unmapped
}
