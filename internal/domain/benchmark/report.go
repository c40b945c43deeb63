package benchmark

import (
	"errors"
	"time"

	"github.com/okian/ratecards/internal/domain/model"
)

// Target names a level to benchmark and the reference rate to place in it.
type Target struct {
	Name      string             `json:"name"`
	Level     string             `json:"level"`
	Location  model.LocationType `json:"location,omitempty"`
	Reference float64            `json:"reference"`
}

// DefaultTargets benchmarks the most junior and most senior levels.
func DefaultTargets(referenceMin, referenceMax float64) []Target {
	return []Target{
		{Name: "junior", Level: model.LevelFollow, Reference: referenceMin},
		{Name: "senior", Level: model.LevelSetStrategy, Reference: referenceMax},
	}
}

// Options tune BuildReport.
type Options struct {
	Samples int
	Seed    uint64
	Now     func() time.Time
}

// LevelReport is the benchmark of one target.
type LevelReport struct {
	Target     Target        `json:"target"`
	Rates      []CompanyRate `json:"rates"`
	Summary    *Summary      `json:"summary,omitempty"`
	Histogram  []Bin         `json:"histogram,omitempty"`
	MonteCarlo []Bin         `json:"monte_carlo,omitempty"`
	Position   *Position     `json:"position,omitempty"`
	Skipped    string        `json:"skipped,omitempty"`
}

// Report is the persisted benchmark document.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Samples     int           `json:"samples"`
	Seed        uint64        `json:"seed"`
	Levels      []LevelReport `json:"levels"`
}

// BuildReport benchmarks each target. A target without enough distinct
// rates is kept with a Skipped reason rather than failing the report.
func BuildReport(single []model.NormalizedRow, targets []Target, opts Options) (Report, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	rep := Report{
		GeneratedAt: now().UTC(),
		Samples:     opts.Samples,
		Seed:        opts.Seed,
		Levels:      make([]LevelReport, 0, len(targets)),
	}

	for _, t := range targets {
		lr := LevelReport{Target: t, Rates: RatesForLevel(single, t.Level, t.Location)}
		s, err := Describe(Values(lr.Rates))
		if errors.Is(err, ErrNoRates) || errors.Is(err, ErrNoSpread) {
			lr.Skipped = err.Error()
			rep.Levels = append(rep.Levels, lr)
			continue
		}
		if err != nil {
			return Report{}, err
		}
		lr.Summary = &s

		if lr.Histogram, err = Histogram(Values(lr.Rates), s.Bins, s.HistLo, s.HistHi); err != nil {
			return Report{}, err
		}
		samples, err := MonteCarlo(s, opts.Samples, opts.Seed)
		if err != nil {
			return Report{}, err
		}
		if lr.MonteCarlo, err = Histogram(samples, s.MCBins, s.MCLo, s.MCHi); err != nil {
			return Report{}, err
		}
		pos := Compare(s, samples, t.Reference)
		lr.Position = &pos
		rep.Levels = append(rep.Levels, lr)
	}
	return rep, nil
}
