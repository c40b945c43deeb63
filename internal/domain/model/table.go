// Package model contains the rate-card domain types passed between pipeline stages.
package model

import (
	"encoding/json"
	"strings"
)

// RawTable is one grid returned by a table-extraction engine. Cells are text;
// a row shorter than Columns has missing trailing cells.
type RawTable struct {
	DocumentID string     // file stem of the originating document
	Index      int        // position of the table inside its document
	Columns    []string   // raw header labels, as produced by the engine
	Rows       [][]string // data rows, header excluded
}

// ColumnIndex returns the position of the column with the exact raw label.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column.
func (t *RawTable) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, idx)
	}
	return out, true
}

// Cell returns the cell at row i, column j or "" when the row is short.
func (t *RawTable) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Missing reports whether a cell carries no value. The "nan" spellings are
// what the dataframe-based extractors emit for empty cells.
func Missing(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "nan", "NaN", "None":
		return true
	}
	return false
}

// RateCardTable is a RawTable that matched a rate-card signature.
type RateCardTable struct {
	RawTable
	Signature string
}

// LocationType is the inferred delivery tier of a rate card.
type LocationType string

// Location types.
const (
	Onshore  LocationType = "onshore"
	Offshore LocationType = "offshore"
)

// NotApplicable marks a price that is not offered at a level.
const NotApplicable = "N/A"

// PriceCategory is one of the six canonical SFIA price columns.
type PriceCategory int

// Canonical price columns in dataset order.
const (
	StrategyAndArchitecture PriceCategory = iota
	ChangeAndTransformation
	DevelopmentAndImplementation
	DeliveryAndOperation
	PeopleAndSkills
	RelationshipsAndEngagement
	priceCategoryCount
)

// PriceCategoryCount is the number of canonical price columns.
const PriceCategoryCount = int(priceCategoryCount)

var priceCategoryNames = [PriceCategoryCount]string{
	"strategy_and_architecture",
	"change_and_transformation",
	"development_and_implementation",
	"delivery_and_operation",
	"people_and_skills",
	"relationships_and_engagement",
}

// String returns the canonical column name.
func (c PriceCategory) String() string {
	if c < 0 || int(c) >= PriceCategoryCount {
		return "unknown"
	}
	return priceCategoryNames[c]
}

// PriceCategories returns all categories in column order.
func PriceCategories() []PriceCategory {
	out := make([]PriceCategory, PriceCategoryCount)
	for i := range out {
		out[i] = PriceCategory(i)
	}
	return out
}

// PriceCategoryByName resolves a canonical column name.
func PriceCategoryByName(name string) (PriceCategory, bool) {
	for i, n := range priceCategoryNames {
		if n == name {
			return PriceCategory(i), true
		}
	}
	return 0, false
}

// Prices holds one cell per price category.
type Prices [PriceCategoryCount]string

// MarshalJSON writes the prices as an object keyed by column name.
func (p Prices) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, PriceCategoryCount)
	for i, v := range p {
		m[priceCategoryNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the object form written by MarshalJSON.
func (p *Prices) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for i, name := range priceCategoryNames {
		p[i] = m[name]
	}
	return nil
}

// NormalizedRow is one level row of a rate card after column standardization.
type NormalizedRow struct {
	SourceDocumentID string       `json:"source_document_id"`
	LevelCode        string       `json:"level_code"`
	LevelName        string       `json:"level_name"`
	Prices           Prices       `json:"prices"`
	LocationType     LocationType `json:"location_type,omitempty"`
}

// Price returns the cell for a category.
func (r *NormalizedRow) Price(c PriceCategory) string {
	return r.Prices[c]
}

// PriceRangeRow is a row whose prices are min-max bands.
type PriceRangeRow struct {
	SourceDocumentID string       `json:"source_document_id"`
	LevelCode        string       `json:"level_code"`
	LevelName        string       `json:"level_name"`
	Min              Prices       `json:"min"`
	Max              Prices       `json:"max"`
	LocationType     LocationType `json:"location_type"`
}

// GoldRow is one pivoted rate card: a price per level name.
type GoldRow struct {
	RateCardID   int               `json:"rate_card_id"`
	Company      string            `json:"company"`
	LocationType LocationType      `json:"location_type"`
	Levels       map[string]string `json:"levels"`
}

// GoldTable is the pivoted dataset with its ordered level columns.
type GoldTable struct {
	LevelNames []string  `json:"level_names"`
	Rows       []GoldRow `json:"rows"`
}
