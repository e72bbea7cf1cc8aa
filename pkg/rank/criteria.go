package rank

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/velocitymatch/vmctl/pkg/carrier"
)

// ScoringMode selects how risk scores are resolved for a filtered
// cohort.
type ScoringMode string

const (
	// ModeAbsolute reuses scores precomputed against the full
	// population. The default.
	ModeAbsolute ScoringMode = "absolute"

	// ModeRelative rescores the filtered cohort against itself, so
	// normalization bounds come from the filtered population.
	ModeRelative ScoringMode = "relative"
)

// ErrInvalidCriteria indicates filter criteria that cannot be applied,
// such as an inverted range.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Criteria are the ephemeral per-request prospect filters. A nil or
// unset field imposes no constraint; set fields combine conjunctively.
type Criteria struct {
	States         []string    `json:"states,omitempty" yaml:"states,omitempty"`
	FleetSizeMin   *int        `json:"fleet_size_min,omitempty" yaml:"fleetSizeMin,omitempty"`
	FleetSizeMax   *int        `json:"fleet_size_max,omitempty" yaml:"fleetSizeMax,omitempty"`
	SafetyScoreMin *float64    `json:"safety_score_min,omitempty" yaml:"safetyScoreMin,omitempty"`
	SafetyScoreMax *float64    `json:"safety_score_max,omitempty" yaml:"safetyScoreMax,omitempty"`
	MinRiskScore   *float64    `json:"min_risk_score,omitempty" yaml:"minRiskScore,omitempty"`
	Mode           ScoringMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

func (c *Criteria) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}

// Validate checks range ordering, threshold domain, and mode. A nil
// criteria is valid and matches everything.
func (c *Criteria) Validate() error {
	if c == nil {
		return nil
	}

	if c.FleetSizeMin != nil && c.FleetSizeMax != nil && *c.FleetSizeMin > *c.FleetSizeMax {
		return fmt.Errorf("%w: fleet size min %d greater than max %d",
			ErrInvalidCriteria, *c.FleetSizeMin, *c.FleetSizeMax)
	}

	if c.SafetyScoreMin != nil && c.SafetyScoreMax != nil && *c.SafetyScoreMin > *c.SafetyScoreMax {
		return fmt.Errorf("%w: safety score min %.2f greater than max %.2f",
			ErrInvalidCriteria, *c.SafetyScoreMin, *c.SafetyScoreMax)
	}

	if c.MinRiskScore != nil && (*c.MinRiskScore < 0 || *c.MinRiskScore > 100) {
		return fmt.Errorf("%w: min risk score %.2f outside [0,100]",
			ErrInvalidCriteria, *c.MinRiskScore)
	}

	switch c.Mode {
	case "", ModeAbsolute, ModeRelative:
	default:
		return fmt.Errorf("%w: unknown scoring mode %q", ErrInvalidCriteria, c.Mode)
	}

	return nil
}

// mode resolves the effective scoring mode.
func (c *Criteria) mode() ScoringMode {
	if c == nil || c.Mode == "" {
		return ModeAbsolute
	}
	return c.Mode
}

// matches reports whether the record passes every set constraint.
func (c *Criteria) matches(r carrier.Record) bool {
	if c == nil {
		return true
	}

	if len(c.States) > 0 && !hasState(c.States, r.State) {
		return false
	}

	if c.FleetSizeMin != nil && r.FleetSize < *c.FleetSizeMin {
		return false
	}
	if c.FleetSizeMax != nil && r.FleetSize > *c.FleetSizeMax {
		return false
	}

	if c.SafetyScoreMin != nil && r.SafetyScore < *c.SafetyScoreMin {
		return false
	}
	if c.SafetyScoreMax != nil && r.SafetyScore > *c.SafetyScoreMax {
		return false
	}

	return true
}

func hasState(list []string, state string) bool {
	for _, s := range list {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}
