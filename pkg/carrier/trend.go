package carrier

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

const (
	// Monthly violation baseline before the seasonal term.
	trendBaseMean = 3.0

	// Seasonal swing amplitude over a 12 month cycle.
	trendSeasonalAmp = 0.3

	TrendMonthsDefault = 24
)

// TrendPoint is one month of violation history, keyed by month offset
// from the start of the series.
type TrendPoint struct {
	Month      int `json:"month" yaml:"month"`
	Violations int `json:"violations" yaml:"violations"`
}

// TrendSeries is the monthly safety violation history for one carrier.
type TrendSeries struct {
	CarrierID string       `json:"carrier_id" yaml:"carrierID"`
	Points    []TrendPoint `json:"points" yaml:"points"`
}

// ViolationTrend synthesizes a monthly violation series for trend
// analysis. The stream is seeded from the carrier ID so the same
// carrier always gets the same history.
func ViolationTrend(carrierID string, months int) (*TrendSeries, error) {
	if carrierID == "" {
		return nil, fmt.Errorf("%w: carrier id required", ErrInvalidParameter)
	}
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", ErrInvalidParameter, months)
	}

	h := fnv.New64a()
	h.Write([]byte(carrierID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	series := &TrendSeries{
		CarrierID: carrierID,
		Points:    make([]TrendPoint, 0, months),
	}

	for m := 0; m < months; m++ {
		base := poisson(rng, trendBaseMean)
		seasonal := 1 + trendSeasonalAmp*math.Sin(2*math.Pi*float64(m)/12)
		v := int(float64(base) * seasonal)
		if v < 0 {
			v = 0
		}
		series.Points = append(series.Points, TrendPoint{Month: m, Violations: v})
	}

	return series, nil
}
