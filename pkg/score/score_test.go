package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velocitymatch/vmctl/pkg/carrier"
)

func testRecord(id string, safety, wage float64) carrier.Record {
	return carrier.Record{
		CarrierID:        id,
		Name:             "Southern Freight Co.",
		State:            "GA",
		City:             "Atlanta",
		FleetSize:        100,
		SafetyScore:      safety,
		OutOfServiceRate: 0.05,
		CrashRate:        1.0,
		WagePercentile:   wage,
		CargoType:        carrier.CargoGeneralFreight,
		ViolationCount:   10,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScore_EmptyCohort(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Score(nil)
	assert.ErrorIs(t, err, ErrEmptyCohort)

	_, err = e.Score([]carrier.Record{})
	assert.ErrorIs(t, err, ErrEmptyCohort)
}

func TestScore_DuplicateCarrier(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Score([]carrier.Record{
		testRecord("USDOT100001", 50, 50),
		testRecord("USDOT100001", 60, 60),
	})
	assert.ErrorIs(t, err, ErrDuplicateCarrier)
}

func TestScore_SingletonNeutral(t *testing.T) {
	e := newTestEngine(t)
	scores, err := e.Score([]carrier.Record{testRecord("USDOT100001", 80, 60)})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores["USDOT100001"]
	assert.Equal(t, 0.5, s.Components[FactorSafety])
	assert.Equal(t, 0.5, s.Components[FactorWage])
	assert.Equal(t, 0.5, s.Components[FactorFleet])
	assert.Equal(t, 50.0, s.ChurnRisk)

	// fleet 100 at midpoint risk: 100 * 25000 * 0.4
	assert.InDelta(t, 1000000.0, s.EstimatedAnnualSavings, 0.01)
}

func TestScore_Extremes(t *testing.T) {
	best := carrier.Record{
		CarrierID: "USDOT100001", State: "TX", FleetSize: 100,
		SafetyScore: 100, OutOfServiceRate: 0, CrashRate: 0,
		WagePercentile: 100, ViolationCount: 0,
	}
	worst := carrier.Record{
		CarrierID: "USDOT100002", State: "TX", FleetSize: 100,
		SafetyScore: 20, OutOfServiceRate: 0.5, CrashRate: 5,
		WagePercentile: 10, ViolationCount: 300,
	}

	e := newTestEngine(t)
	scores, err := e.Score([]carrier.Record{best, worst})
	require.NoError(t, err)

	assert.Equal(t, 0.0, scores["USDOT100001"].ChurnRisk)
	assert.Equal(t, 100.0, scores["USDOT100002"].ChurnRisk)

	// fleet 100: 25000 * 0.4 * 100 scaled by 1 +/- 0.5
	assert.InDelta(t, 500000.0, scores["USDOT100001"].EstimatedAnnualSavings, 0.01)
	assert.InDelta(t, 1500000.0, scores["USDOT100002"].EstimatedAnnualSavings, 0.01)
}

func TestScore_Bounds(t *testing.T) {
	records, err := carrier.Generate(42, 500)
	require.NoError(t, err)

	e := newTestEngine(t)
	scores, err := e.Score(records)
	require.NoError(t, err)
	require.Len(t, scores, len(records))

	for _, r := range records {
		s, ok := scores[r.CarrierID]
		require.True(t, ok, "missing score for %s", r.CarrierID)

		assert.GreaterOrEqual(t, s.ChurnRisk, 0.0)
		assert.LessOrEqual(t, s.ChurnRisk, 100.0)
		assert.GreaterOrEqual(t, s.EstimatedAnnualSavings, 0.0)

		require.Len(t, s.Components, 3)
		for name, v := range s.Components {
			assert.GreaterOrEqual(t, v, 0.0, "component %s", name)
			assert.LessOrEqual(t, v, 1.0, "component %s", name)
		}
	}
}

func TestScore_SafetyMonotonicity(t *testing.T) {
	cohort := func(midSafety float64) []carrier.Record {
		return []carrier.Record{
			testRecord("USDOT100001", 30, 50),
			testRecord("USDOT100002", midSafety, 50),
			testRecord("USDOT100003", 90, 50),
		}
	}

	e := newTestEngine(t)

	before, err := e.Score(cohort(60))
	require.NoError(t, err)
	after, err := e.Score(cohort(40))
	require.NoError(t, err)

	assert.GreaterOrEqual(t,
		after["USDOT100002"].ChurnRisk,
		before["USDOT100002"].ChurnRisk)
}

func TestScore_OrderIndependent(t *testing.T) {
	records, err := carrier.Generate(11, 200)
	require.NoError(t, err)

	reversed := make([]carrier.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	e := newTestEngine(t)
	a, err := e.Score(records)
	require.NoError(t, err)
	b, err := e.Score(reversed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestScore_ParallelMatchesSerial(t *testing.T) {
	records, err := carrier.Generate(1, parallelThreshold*2)
	require.NoError(t, err)

	e := newTestEngine(t)

	// Score takes the parallel path at this cohort size.
	got, err := e.Score(records)
	require.NoError(t, err)

	b := cohortBounds(records)
	want := make(map[string]RiskScore, len(records))
	for _, r := range records {
		want[r.CarrierID] = e.scoreRecord(r, b)
	}

	assert.Equal(t, want, got)
}

func TestNormalize_Degenerate(t *testing.T) {
	assert.Equal(t, 0.5, normalize(5, 5, 5))
	assert.Equal(t, 0.5, normalize(0, 3, 3))
}

func TestNormalize_Clamped(t *testing.T) {
	assert.Equal(t, 0.0, normalize(-1, 0, 10))
	assert.Equal(t, 1.0, normalize(11, 0, 10))
	assert.Equal(t, 0.5, normalize(5, 0, 10))
}
