package benchmark

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// minSimulatedRate replaces a negative lower Monte Carlo bound.
const minSimulatedRate = 50

// maxRejectionRounds bounds the draws per accepted sample.
const maxRejectionRounds = 1000

// Summary describes a set of day rates.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`

	// Histogram of the observed rates: Bins buckets of width Std from Min.
	Bins   int     `json:"bins"`
	HistLo float64 `json:"hist_lo"`
	HistHi float64 `json:"hist_hi"`

	// Monte Carlo truncation bounds, one Std beyond the observed range.
	MCLo   float64 `json:"mc_lo"`
	MCHi   float64 `json:"mc_hi"`
	MCBins int     `json:"mc_bins"`
}

// Describe computes the summary. Standard deviation is the population one.
func Describe(rates []float64) (Summary, error) {
	if len(rates) == 0 {
		return Summary{}, ErrNoRates
	}
	var (
		s   = Summary{Count: len(rates)}
		err error
	)
	if s.Mean, err = stats.Mean(rates); err != nil {
		return Summary{}, err
	}
	if s.Std, err = stats.StandardDeviationPopulation(rates); err != nil {
		return Summary{}, err
	}
	if s.Min, err = stats.Min(rates); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(rates); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(rates); err != nil {
		return Summary{}, err
	}
	if s.P25, err = stats.Percentile(rates, 25); err != nil {
		return Summary{}, err
	}
	if s.P75, err = stats.Percentile(rates, 75); err != nil {
		return Summary{}, err
	}
	if s.Std == 0 {
		return s, fmt.Errorf("%w: %d identical rates of %.2f", ErrNoSpread, s.Count, s.Min)
	}

	s.Bins = int(math.Ceil((s.Max - s.Min) / s.Std))
	s.HistLo = s.Min
	s.HistHi = s.Min + s.Std*float64(s.Bins)

	s.MCLo = s.Min - s.Std
	if s.MCLo < 0 {
		s.MCLo = minSimulatedRate
	}
	s.MCHi = s.Max + s.Std
	s.MCBins = int(math.Ceil((s.MCHi - s.MCLo) / s.Std))
	return s, nil
}

// MonteCarlo draws n rates from a normal with the summary's mean and
// standard deviation, truncated to [MCLo, MCHi]. The same seed gives the
// same samples.
func MonteCarlo(s Summary, n int, seed uint64) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrSamples, n)
	}
	if s.Std <= 0 {
		return nil, ErrNoSpread
	}
	dist := distuv.Normal{
		Mu:    s.Mean,
		Sigma: s.Std,
		Src:   rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	if mass := dist.CDF(s.MCHi) - dist.CDF(s.MCLo); mass <= 1.0/maxRejectionRounds {
		return nil, fmt.Errorf("%w: truncation window [%.2f, %.2f] holds %.4f of the mass", ErrSamples, s.MCLo, s.MCHi, mass)
	}

	out := make([]float64, 0, n)
	for len(out) < n {
		accepted := false
		for range maxRejectionRounds {
			v := dist.Rand()
			if v >= s.MCLo && v <= s.MCHi {
				out = append(out, v)
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, fmt.Errorf("%w: rejection sampling did not converge", ErrSamples)
		}
	}
	return out, nil
}

// Bin is one histogram bucket.
type Bin struct {
	Lo      float64 `json:"lo"`
	Hi      float64 `json:"hi"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Histogram buckets values into bins equal-width bins over [lo, hi]. The
// last bin is closed; values outside the range are not counted. Percentages
// are of the counted values.
func Histogram(values []float64, bins int, lo, hi float64) ([]Bin, error) {
	if bins <= 0 || !(hi > lo) {
		return nil, fmt.Errorf("%w: %d over [%v, %v]", ErrBins, bins, lo, hi)
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + width*float64(i)
		out[i].Hi = lo + width*float64(i+1)
	}
	out[bins-1].Hi = hi

	total := 0
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
		total++
	}
	if total > 0 {
		for i := range out {
			out[i].Percent = float64(out[i].Count) / float64(total) * 100
		}
	}
	return out, nil
}

// Position places a reference rate against simulated samples.
type Position struct {
	Reference float64 `json:"reference"`
	// Percentile is the share of samples at or below the reference, 0-100.
	Percentile float64 `json:"percentile"`
	// CDF is the untruncated normal probability of a rate at or below the reference.
	CDF    float64 `json:"cdf"`
	ZScore float64 `json:"z_score"`
}

// Compare positions reference within samples drawn for s.
func Compare(s Summary, samples []float64, reference float64) Position {
	p := Position{Reference: reference}
	if len(samples) > 0 {
		below := 0
		for _, v := range samples {
			if v <= reference {
				below++
			}
		}
		p.Percentile = float64(below) / float64(len(samples)) * 100
	}
	if s.Std > 0 {
		dist := distuv.Normal{Mu: s.Mean, Sigma: s.Std}
		p.CDF = dist.CDF(reference)
		p.ZScore = (reference - s.Mean) / s.Std
	}
	return p
}
