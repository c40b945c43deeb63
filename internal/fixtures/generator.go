package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/pkg/logger"
)

const directoryPermission = 0o750

// Price generation ranges, in pounds per day.
const (
	onshoreBaseMin   = 250
	onshoreBaseRange = 200
	levelStepMin     = 90
	levelStepRange   = 60
	categorySpread   = 15
	offshorePercent  = 55
	rangeWidth       = 100
)

const sheetName = "Rates"

var levelCodes = []string{"A", "B", "C", "D", "E", "F", "G"}

var categoryHeaders = []string{
	"Strategy and\narchitecture",
	"Change and\ntransformation",
	"Development and\nimplementation",
	"Delivery and\noperation",
	"People and\nskills",
	"Relationships and\nengagement",
}

// Card is one generated rate card. Prices are day rates per level (SFIA
// order) and category.
type Card struct {
	DocumentID string
	Onshore    [][model.PriceCategoryCount]int64
	Offshore   [][model.PriceCategoryCount]int64 // nil when the card has one table
	RangeLevel int                               // level index whose strategy cell is a range, or -1
}

// Generate builds n deterministic cards.
func Generate(cfg *Config) []Card {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d))
	levels := len(model.SFIALevels())

	cards := make([]Card, cfg.Cards)
	for i := range cards {
		c := Card{
			DocumentID: fmt.Sprintf("vendor%02d_gcloud_%d", i+1, 2023+i%3),
			Onshore:    make([][model.PriceCategoryCount]int64, levels),
			RangeLevel: -1,
		}
		base := int64(onshoreBaseMin + rng.IntN(onshoreBaseRange))
		for l := 0; l < levels; l++ {
			for cat := range c.Onshore[l] {
				c.Onshore[l][cat] = base + int64(rng.IntN(categorySpread))
			}
			base += int64(levelStepMin + rng.IntN(levelStepRange))
		}
		if cfg.Offshore && i%2 == 0 {
			c.Offshore = make([][model.PriceCategoryCount]int64, levels)
			for l := range c.Onshore {
				for cat, p := range c.Onshore[l] {
					c.Offshore[l][cat] = p * offshorePercent / 100
				}
			}
		}
		if cfg.Ranges && i%3 == 1 {
			c.RangeLevel = 2 + rng.IntN(levels-2)
		}
		cards[i] = c
	}
	return cards
}

// formatPrice writes a day rate the way published cards do: "£1,320".
func formatPrice(p int64) string {
	s := strconv.FormatInt(p, 10)
	if len(s) > 3 {
		s = s[:len(s)-3] + "," + s[len(s)-3:]
	}
	return "£" + s
}

// WriteWorkbook writes the card as an xlsx file laid out like the
// published PDFs: a cover table, then the onshore and optional offshore
// rate tables, separated by blank rows.
func WriteWorkbook(path string, c Card) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	rows := [][]any{
		{"Service", "Description"},
		{"Cloud support", "Follow the sun support desk"},
		{},
	}
	rows = append(rows, rateTable(c.Onshore, c.RangeLevel)...)
	if c.Offshore != nil {
		rows = append(rows, []any{})
		rows = append(rows, rateTable(c.Offshore, -1)...)
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func rateTable(prices [][model.PriceCategoryCount]int64, rangeLevel int) [][]any {
	header := []any{""}
	for _, h := range categoryHeaders {
		header = append(header, h)
	}
	out := [][]any{header}
	for l, name := range model.SFIALevels() {
		row := []any{levelCodes[l] + ". " + name}
		for cat, p := range prices[l] {
			cell := formatPrice(p)
			if l == rangeLevel && cat == int(model.StrategyAndArchitecture) {
				cell = formatPrice(p) + "-" + formatPrice(p+rangeWidth)
			}
			row = append(row, cell)
		}
		out = append(out, row)
	}
	return out
}

// WriteCards writes every card into dir as <document id>.xlsx.
func WriteCards(ctx context.Context, dir string, cards []Card) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}
	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, c.DocumentID+".xlsx")
		if err := WriteWorkbook(path, c); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	logger.Get().Info(ctx, "rate cards written",
		logger.Int("cards", len(cards)),
		logger.String("dir", dir))
	return nil
}
