package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/rank"
	"github.com/velocitymatch/vmctl/pkg/score"
)

var (
	summaryCmd = &urfave.Command{
		Name:    "summary",
		Aliases: []string{"sum"},
		Usage:   "Cohort rollup operations",
		Subcommands: []*urfave.Command{
			{
				Name:    "state",
				Usage:   "Summarize cohort KPIs per state",
				Aliases: []string{"s"},
				Action:  cmdSummaryState,
				Flags: []urfave.Flag{
					seedFlag,
					countFlag,
					snapshotFlag,
				},
			},
		},
	}
)

type summaryResult struct {
	KPI    rank.KPI            `json:"kpi" yaml:"kpi"`
	States []rank.StateSummary `json:"states" yaml:"states"`
}

func cmdSummaryState(c *urfave.Context) error {
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

	prospects, err := ranker.Rank(records, scores, nil)
	if err != nil {
		return fmt.Errorf("failed to assemble prospects: %w", err)
	}

	result := &summaryResult{
		KPI:    rank.Summarize(prospects),
		States: rank.SummarizeByState(prospects),
	}

	if err := encode(result); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", result, err)
	}

	return nil
}
