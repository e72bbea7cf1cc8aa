package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velocitymatch/vmctl/pkg/carrier"
	"github.com/velocitymatch/vmctl/pkg/score"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testRecord(id, state string, fleet int, safety float64) carrier.Record {
	return carrier.Record{
		CarrierID:        id,
		Name:             "Metro Trucking Co.",
		State:            state,
		FleetSize:        fleet,
		SafetyScore:      safety,
		OutOfServiceRate: 0.05,
		CrashRate:        1.2,
		WagePercentile:   55,
		CargoType:        carrier.CargoDryVan,
		ViolationCount:   12,
	}
}

func testScore(id string, risk, savings float64) score.RiskScore {
	return score.RiskScore{
		CarrierID:              id,
		ChurnRisk:              risk,
		EstimatedAnnualSavings: savings,
		Components: map[string]float64{
			score.FactorSafety: 0.5,
			score.FactorWage:   0.5,
			score.FactorFleet:  0.5,
		},
	}
}

func newTestRanker(t *testing.T) *Ranker {
	t.Helper()
	e, err := score.NewEngine(score.DefaultConfig())
	require.NoError(t, err)
	k, err := NewRanker(e)
	require.NoError(t, err)
	return k
}

func TestNewRanker_NilEngine(t *testing.T) {
	_, err := NewRanker(nil)
	assert.Error(t, err)
}

func TestRank_EmptyRecords(t *testing.T) {
	k := newTestRanker(t)
	_, err := k.Rank(nil, nil, nil)
	assert.ErrorIs(t, err, score.ErrEmptyCohort)
}

func TestRank_SortOrder(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "GA", 50, 70),
		testRecord("USDOT100002", "GA", 50, 70),
		testRecord("USDOT100003", "GA", 50, 70),
		testRecord("USDOT100004", "GA", 50, 70),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 50, 8000),
		"USDOT100002": testScore("USDOT100002", 50, 5000),
		"USDOT100003": testScore("USDOT100003", 50, 8000),
		"USDOT100004": testScore("USDOT100004", 90, 100),
	}

	k := newTestRanker(t)
	list, err := k.Rank(records, scores, nil)
	require.NoError(t, err)
	require.Len(t, list, 4)

	// Highest risk first, then savings desc, then carrier ID asc.
	assert.Equal(t, "USDOT100004", list[0].Record.CarrierID)
	assert.Equal(t, "USDOT100001", list[1].Record.CarrierID)
	assert.Equal(t, "USDOT100003", list[2].Record.CarrierID)
	assert.Equal(t, "USDOT100002", list[3].Record.CarrierID)
}

func TestRank_FilterConjunction(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "TX", 100, 70),
		testRecord("USDOT100002", "TX", 20, 70),
		testRecord("USDOT100003", "GA", 100, 70),
		testRecord("USDOT100004", "TX", 50, 70),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 60, 1000),
		"USDOT100002": testScore("USDOT100002", 70, 1000),
		"USDOT100003": testScore("USDOT100003", 80, 1000),
		"USDOT100004": testScore("USDOT100004", 50, 1000),
	}

	k := newTestRanker(t)
	list, err := k.Rank(records, scores, &Criteria{
		States:       []string{"TX"},
		FleetSizeMin: intPtr(50),
	})
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, p := range list {
		assert.Equal(t, "TX", p.Record.State)
		assert.GreaterOrEqual(t, p.Record.FleetSize, 50)
	}
}

func TestRank_SafetyScoreRange(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "GA", 50, 20),
		testRecord("USDOT100002", "GA", 50, 55),
		testRecord("USDOT100003", "GA", 50, 90),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 60, 1000),
		"USDOT100002": testScore("USDOT100002", 50, 1000),
		"USDOT100003": testScore("USDOT100003", 40, 1000),
	}

	k := newTestRanker(t)
	list, err := k.Rank(records, scores, &Criteria{
		SafetyScoreMin: floatPtr(40),
		SafetyScoreMax: floatPtr(80),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "USDOT100002", list[0].Record.CarrierID)
}

func TestRank_MinRiskScore(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "GA", 50, 70),
		testRecord("USDOT100002", "GA", 50, 70),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 80, 1000),
		"USDOT100002": testScore("USDOT100002", 40, 1000),
	}

	k := newTestRanker(t)
	list, err := k.Rank(records, scores, &Criteria{MinRiskScore: floatPtr(60)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "USDOT100001", list[0].Record.CarrierID)
}

func TestRank_FilterToEmpty(t *testing.T) {
	records := []carrier.Record{testRecord("USDOT100001", "GA", 50, 70)}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 50, 1000),
	}

	k := newTestRanker(t)

	list, err := k.Rank(records, scores, &Criteria{States: []string{"TX"}})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = k.Rank(records, scores, &Criteria{States: []string{"TX"}, Mode: ModeRelative})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRank_MissingScore(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "GA", 50, 70),
		testRecord("USDOT100002", "GA", 50, 70),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 50, 1000),
	}

	k := newTestRanker(t)
	_, err := k.Rank(records, scores, nil)
	assert.ErrorIs(t, err, ErrMissingScore)
}

func TestRank_RelativeModeRescoresFiltered(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "TX", 50, 30),
		testRecord("USDOT100002", "GA", 50, 60),
		testRecord("USDOT100003", "GA", 50, 90),
	}

	k := newTestRanker(t)

	// Filtering down to a single carrier in relative mode makes its
	// normalization degenerate, so every component lands on neutral.
	list, err := k.Rank(records, nil, &Criteria{
		States: []string{"TX"},
		Mode:   ModeRelative,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "USDOT100001", list[0].Record.CarrierID)
	assert.Equal(t, 50.0, list[0].Score.ChurnRisk)
	assert.Equal(t, 0.5, list[0].Score.Components[score.FactorSafety])
}

func TestRank_AbsoluteModeReusesScores(t *testing.T) {
	records := []carrier.Record{
		testRecord("USDOT100001", "TX", 50, 30),
		testRecord("USDOT100002", "GA", 50, 60),
	}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 77, 1234),
		"USDOT100002": testScore("USDOT100002", 33, 4321),
	}

	k := newTestRanker(t)
	list, err := k.Rank(records, scores, &Criteria{
		States: []string{"TX"},
		Mode:   ModeAbsolute,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 77.0, list[0].Score.ChurnRisk)
	assert.Equal(t, 1234.0, list[0].Score.EstimatedAnnualSavings)
}

func TestRank_InvalidCriteria(t *testing.T) {
	records := []carrier.Record{testRecord("USDOT100001", "GA", 50, 70)}
	scores := map[string]score.RiskScore{
		"USDOT100001": testScore("USDOT100001", 50, 1000),
	}

	k := newTestRanker(t)

	_, err := k.Rank(records, scores, &Criteria{
		FleetSizeMin: intPtr(100),
		FleetSizeMax: intPtr(10),
	})
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	_, err = k.Rank(records, scores, &Criteria{Mode: ScoringMode("percentile")})
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}
