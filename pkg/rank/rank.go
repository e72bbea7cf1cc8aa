package rank

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/velocitymatch/vmctl/pkg/carrier"
	"github.com/velocitymatch/vmctl/pkg/score"
)

// ErrMissingScore indicates a record survived filtering but has no
// entry in the provided score map.
var ErrMissingScore = errors.New("missing score")

// Prospect pairs a carrier with its risk assessment.
type Prospect struct {
	Record carrier.Record  `json:"record" yaml:"record"`
	Score  score.RiskScore `json:"score" yaml:"score"`
}

// Ranker filters and orders scored carriers into prospect lists.
type Ranker struct {
	engine *score.Engine
}

// NewRanker returns a ranker backed by the given scoring engine. The
// engine is used when criteria request relative scoring.
func NewRanker(e *score.Engine) (*Ranker, error) {
	if e == nil {
		return nil, errors.New("scoring engine required")
	}
	return &Ranker{engine: e}, nil
}

// Rank filters records by criteria and orders the survivors by churn
// risk descending, ties broken by estimated savings descending, then
// carrier ID ascending. In relative mode scores are re-derived against
// the filtered cohort; in absolute mode the provided scores are reused.
func (k *Ranker) Rank(records []carrier.Record, scores map[string]score.RiskScore, criteria *Criteria) ([]Prospect, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to rank", score.ErrEmptyCohort)
	}

	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	filtered := make([]carrier.Record, 0, len(records))
	for _, r := range records {
		if criteria.matches(r) {
			filtered = append(filtered, r)
		}
	}

	slog.Debug("cohort filtered", "records", len(records), "matched", len(filtered), "mode", criteria.mode())

	resolved := scores
	if criteria.mode() == ModeRelative {
		if len(filtered) == 0 {
			return []Prospect{}, nil
		}
		rescored, err := k.engine.Score(filtered)
		if err != nil {
			return nil, fmt.Errorf("error rescoring filtered cohort: %w", err)
		}
		resolved = rescored
	}

	list := make([]Prospect, 0, len(filtered))
	for _, r := range filtered {
		s, ok := resolved[r.CarrierID]
		if !ok {
			return nil, fmt.Errorf("%w: carrier %s", ErrMissingScore, r.CarrierID)
		}
		if criteria != nil && criteria.MinRiskScore != nil && s.ChurnRisk < *criteria.MinRiskScore {
			continue
		}
		list = append(list, Prospect{Record: r, Score: s})
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Score.ChurnRisk != b.Score.ChurnRisk {
			return a.Score.ChurnRisk > b.Score.ChurnRisk
		}
		if a.Score.EstimatedAnnualSavings != b.Score.EstimatedAnnualSavings {
			return a.Score.EstimatedAnnualSavings > b.Score.EstimatedAnnualSavings
		}
		return a.Record.CarrierID < b.Record.CarrierID
	})

	return list, nil
}
