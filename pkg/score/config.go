package score

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Default factor weights (sum to 1.0).
	defaultSafetyWeight = 0.5
	defaultWageWeight   = 0.3
	defaultFleetWeight  = 0.2

	// Industry average driver replacement cost and the retention
	// improvement assumed when a carrier adopts the platform.
	defaultReplacementCost = 25000.0
	defaultSavingsRate     = 0.4

	weightSumTolerance = 1e-9
)

// ErrInvalidConfig indicates scoring configuration that cannot produce
// a well-formed model.
var ErrInvalidConfig = errors.New("invalid scoring config")

// Config holds the scoring model parameters. Passed explicitly to
// NewEngine so the engine stays a pure function of its inputs.
type Config struct {
	SafetyWeight    float64 `json:"safety_weight" yaml:"safetyWeight"`
	WageWeight      float64 `json:"wage_weight" yaml:"wageWeight"`
	FleetWeight     float64 `json:"fleet_weight" yaml:"fleetWeight"`
	ReplacementCost float64 `json:"replacement_cost" yaml:"replacementCost"`
	SavingsRate     float64 `json:"savings_rate" yaml:"savingsRate"`
}

// DefaultConfig returns the recognized default model parameters.
func DefaultConfig() Config {
	return Config{
		SafetyWeight:    defaultSafetyWeight,
		WageWeight:      defaultWageWeight,
		FleetWeight:     defaultFleetWeight,
		ReplacementCost: defaultReplacementCost,
		SavingsRate:     defaultSavingsRate,
	}
}

// Validate checks the model parameters. Weights must be non-negative
// and sum to 1.
func (c Config) Validate() error {
	if c.SafetyWeight < 0 || c.WageWeight < 0 || c.FleetWeight < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	}

	sum := c.SafetyWeight + c.WageWeight + c.FleetWeight
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %.4f", ErrInvalidConfig, sum)
	}

	if c.ReplacementCost <= 0 {
		return fmt.Errorf("%w: replacement cost must be positive", ErrInvalidConfig)
	}

	if c.SavingsRate <= 0 || c.SavingsRate > 1 {
		return fmt.Errorf("%w: savings rate must be in (0,1], got %.4f", ErrInvalidConfig, c.SavingsRate)
	}

	return nil
}
