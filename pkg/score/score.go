package score

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/velocitymatch/vmctl/pkg/carrier"
)

// ModelVersion is the current scoring model version.
const ModelVersion = "1.0.0"

// Factor names used as component score keys.
const (
	FactorSafety = "safety"
	FactorWage   = "wage"
	FactorFleet  = "fleet"
)

const (
	// Min-max normalization falls back to this value when the cohort
	// range is degenerate (single record or constant factor).
	neutralNorm = 0.5

	// Cohorts at or above this size are scored by parallel workers
	// after the bounds pass completes.
	parallelThreshold = 2048
)

var (
	// ErrEmptyCohort indicates scoring or ranking was called with no
	// records.
	ErrEmptyCohort = errors.New("empty cohort")

	// ErrDuplicateCarrier indicates two input records share an ID.
	ErrDuplicateCarrier = errors.New("duplicate carrier id")
)

// RiskScore is the derived churn-risk assessment for one carrier,
// immutable once computed for a given input cohort.
type RiskScore struct {
	CarrierID              string             `json:"carrier_id" yaml:"carrierID"`
	ChurnRisk              float64            `json:"churn_risk_score" yaml:"churnRiskScore"`
	EstimatedAnnualSavings float64            `json:"estimated_annual_savings" yaml:"estimatedAnnualSavings"`
	Components             map[string]float64 `json:"component_scores" yaml:"componentScores"`
}

// factorBounds holds the cohort min-max per raw factor. Computed in a
// full reduction pass before any record is scored.
type factorBounds struct {
	safetyMin, safetyMax float64
	wageMin, wageMax     float64
	oosMin, oosMax       float64
	crashMin, crashMax   float64
	vpuMin, vpuMax       float64
}

// Engine computes churn-risk scores relative to an input cohort.
type Engine struct {
	cfg Config
}

// NewEngine returns a scoring engine for the given model parameters.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's model parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes a churn-risk score for every record, normalized
// against the cohort itself. Deterministic for a given record set
// regardless of input order.
func (e *Engine) Score(records []carrier.Record) (map[string]RiskScore, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to score", ErrEmptyCohort)
	}

	b := cohortBounds(records)
	slog.Debug("cohort bounds computed",
		"records", len(records),
		"safety_min", b.safetyMin, "safety_max", b.safetyMax,
		"wage_min", b.wageMin, "wage_max", b.wageMax)

	scores := make([]RiskScore, len(records))
	if len(records) >= parallelThreshold {
		if err := e.scoreParallel(records, b, scores); err != nil {
			return nil, fmt.Errorf("error scoring cohort: %w", err)
		}
	} else {
		for i, r := range records {
			scores[i] = e.scoreRecord(r, b)
		}
	}

	out := make(map[string]RiskScore, len(records))
	for _, s := range scores {
		if _, ok := out[s.CarrierID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCarrier, s.CarrierID)
		}
		out[s.CarrierID] = s
	}

	return out, nil
}

// scoreParallel fans per-record scoring out over chunked workers. The
// bounds reduction has already completed, so workers only read shared
// state and write disjoint index ranges.
func (e *Engine) scoreParallel(records []carrier.Record, b factorBounds, out []RiskScore) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}
	chunk := (len(records) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(records) {
			break
		}
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = e.scoreRecord(records[i], b)
			}
			return nil
		})
	}

	return g.Wait()
}

// scoreRecord computes one carrier's score against precomputed cohort
// bounds. Component values are the risk-direction normalized factors,
// each in [0,1].
func (e *Engine) scoreRecord(r carrier.Record, b factorBounds) RiskScore {
	safety := 1 - normalize(r.SafetyScore, b.safetyMin, b.safetyMax)
	wage := 1 - normalize(r.WagePercentile, b.wageMin, b.wageMax)

	// Fleet profile: operational exposure per power unit.
	oos := normalize(r.OutOfServiceRate, b.oosMin, b.oosMax)
	crash := normalize(r.CrashRate, b.crashMin, b.crashMax)
	vpu := normalize(violationsPerUnit(r), b.vpuMin, b.vpuMax)
	fleet := (oos + crash + vpu) / 3

	risk := (e.cfg.SafetyWeight*safety + e.cfg.WageWeight*wage + e.cfg.FleetWeight*fleet) * 100
	risk = clamp(risk, 0, 100)

	// Savings opportunity scales with fleet size and how far the risk
	// sits above the cohort midpoint.
	savings := float64(r.FleetSize) * e.cfg.ReplacementCost * e.cfg.SavingsRate * (1 + (risk-50)/100)
	if savings < 0 {
		savings = 0
	}

	return RiskScore{
		CarrierID:              r.CarrierID,
		ChurnRisk:              toFixed(risk, 2),
		EstimatedAnnualSavings: toFixed(savings, 2),
		Components: map[string]float64{
			FactorSafety: toFixed(safety, 4),
			FactorWage:   toFixed(wage, 4),
			FactorFleet:  toFixed(fleet, 4),
		},
	}
}

// cohortBounds reduces the cohort to per-factor min-max bounds.
func cohortBounds(records []carrier.Record) factorBounds {
	b := factorBounds{
		safetyMin: records[0].SafetyScore, safetyMax: records[0].SafetyScore,
		wageMin: records[0].WagePercentile, wageMax: records[0].WagePercentile,
		oosMin: records[0].OutOfServiceRate, oosMax: records[0].OutOfServiceRate,
		crashMin: records[0].CrashRate, crashMax: records[0].CrashRate,
		vpuMin: violationsPerUnit(records[0]), vpuMax: violationsPerUnit(records[0]),
	}

	for _, r := range records[1:] {
		b.safetyMin = math.Min(b.safetyMin, r.SafetyScore)
		b.safetyMax = math.Max(b.safetyMax, r.SafetyScore)
		b.wageMin = math.Min(b.wageMin, r.WagePercentile)
		b.wageMax = math.Max(b.wageMax, r.WagePercentile)
		b.oosMin = math.Min(b.oosMin, r.OutOfServiceRate)
		b.oosMax = math.Max(b.oosMax, r.OutOfServiceRate)
		b.crashMin = math.Min(b.crashMin, r.CrashRate)
		b.crashMax = math.Max(b.crashMax, r.CrashRate)

		vpu := violationsPerUnit(r)
		b.vpuMin = math.Min(b.vpuMin, vpu)
		b.vpuMax = math.Max(b.vpuMax, vpu)
	}

	return b
}

// violationsPerUnit is the annual violation count per power unit.
// FleetSize is always positive per the record invariant.
func violationsPerUnit(r carrier.Record) float64 {
	return float64(r.ViolationCount) / float64(r.FleetSize)
}

// normalize maps val into [0,1] by min-max scaling, falling back to the
// neutral value on a degenerate range.
func normalize(val, lo, hi float64) float64 {
	if hi <= lo {
		return neutralNorm
	}
	return clamp((val-lo)/(hi-lo), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toFixed rounds a float64 to the given precision.
func toFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(int64(math.Round(num*output))) / output
}
