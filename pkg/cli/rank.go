package cli

import (
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/rank"
	"github.com/velocitymatch/vmctl/pkg/score"
)

const (
	rankResultLimitDefault = 500
)

var (
	stateFlag = &urfave.StringSliceFlag{
		Name:  "state",
		Usage: "Limit prospects to a state, repeatable (e.g. --state TX --state GA)",
	}

	fleetMinFlag = &urfave.IntFlag{
		Name:  "fleet-min",
		Usage: "Minimum fleet size (power units)",
	}

	fleetMaxFlag = &urfave.IntFlag{
		Name:  "fleet-max",
		Usage: "Maximum fleet size (power units)",
	}

	safetyMinFlag = &urfave.Float64Flag{
		Name:  "safety-min",
		Usage: "Minimum safety score (0-100)",
	}

	safetyMaxFlag = &urfave.Float64Flag{
		Name:  "safety-max",
		Usage: "Maximum safety score (0-100)",
	}

	minRiskFlag = &urfave.Float64Flag{
		Name:  "min-risk",
		Usage: "Drop prospects below this churn risk score (0-100)",
	}

	modeFlag = &urfave.StringFlag{
		Name:  "mode",
		Usage: "Scoring mode [absolute, relative]",
	}

	rankLimitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Limits number of prospects returned",
		Value: rankResultLimitDefault,
	}

	rankCmd = &urfave.Command{
		Name:    "rank",
		Aliases: []string{"r"},
		Usage:   "Filter and rank carrier prospects by churn risk",
		Action:  cmdRank,
		Flags: []urfave.Flag{
			seedFlag,
			countFlag,
			snapshotFlag,
			stateFlag,
			fleetMinFlag,
			fleetMaxFlag,
			safetyMinFlag,
			safetyMaxFlag,
			minRiskFlag,
			modeFlag,
			rankLimitFlag,
		},
	}
)

type rankResult struct {
	Criteria  *rank.Criteria  `json:"criteria" yaml:"criteria"`
	KPI       rank.KPI        `json:"kpi" yaml:"kpi"`
	Prospects []rank.Prospect `json:"prospects" yaml:"prospects"`
}

func optionalInt(c *urfave.Context, f *urfave.IntFlag) *int {
	if !c.IsSet(f.Name) {
		return nil
	}
	v := c.Int(f.Name)
	return &v
}

func optionalFloat(c *urfave.Context, f *urfave.Float64Flag) *float64 {
	if !c.IsSet(f.Name) {
		return nil
	}
	v := c.Float64(f.Name)
	return &v
}

func cmdRank(c *urfave.Context) error {
	criteria := &rank.Criteria{
		States:         c.StringSlice(stateFlag.Name),
		FleetSizeMin:   optionalInt(c, fleetMinFlag),
		FleetSizeMax:   optionalInt(c, fleetMaxFlag),
		SafetyScoreMin: optionalFloat(c, safetyMinFlag),
		SafetyScoreMax: optionalFloat(c, safetyMaxFlag),
		MinRiskScore:   optionalFloat(c, minRiskFlag),
		Mode:           rank.ScoringMode(c.String(modeFlag.Name)),
	}

	limit := c.Int(rankLimitFlag.Name)
	if limit <= 0 || limit > rankResultLimitDefault {
		limit = rankResultLimitDefault
	}

	slog.Debug("ranking prospects", "criteria", criteria, "limit", limit)

	records, scores, err := resolveScoredCohort(c)
	if err != nil {
		return err
	}

	cfg := getConfig(c)
	engine, err := score.NewEngine(cfg.Scoring)
	if err != nil {
		return fmt.Errorf("failed to create scoring engine: %w", err)
	}

	ranker, err := rank.NewRanker(engine)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	prospects, err := ranker.Rank(records, scores, criteria)
	if err != nil {
		return fmt.Errorf("failed to rank prospects: %w", err)
	}

	// KPI covers the whole filtered cohort, the limit only trims output.
	result := &rankResult{
		Criteria:  criteria,
		KPI:       rank.Summarize(prospects),
		Prospects: prospects,
	}
	if len(result.Prospects) > limit {
		result.Prospects = result.Prospects[:limit]
	}

	if err := encode(result); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", result, err)
	}

	return nil
}
