package cli

import (
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/carrier"
	"github.com/velocitymatch/vmctl/pkg/score"
)

var (
	snapshotFlag = &urfave.StringFlag{
		Name:  "snapshot",
		Usage: "ID of a saved snapshot to use instead of generating records",
	}

	scoreCmd = &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score a carrier cohort and emit the per-carrier risk mapping",
		Action:  cmdScore,
		Flags: []urfave.Flag{
			seedFlag,
			countFlag,
			snapshotFlag,
		},
	}
)

func cmdScore(c *urfave.Context) error {
	_, scores, err := resolveScoredCohort(c)
	if err != nil {
		return err
	}

	if err := encode(scores); err != nil {
		return fmt.Errorf("error encoding scores: %w", err)
	}

	return nil
}

// resolveCohort loads records from the snapshot named by --snapshot,
// or generates them from --seed and --count.
func resolveCohort(c *urfave.Context) ([]carrier.Record, error) {
	if id := c.String(snapshotFlag.Name); id != "" {
		cfg := getConfig(c)
		d, err := cfg.Store.GetSnapshot(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
		}
		slog.Debug("loaded snapshot", "id", id, "records", len(d.Records))
		return d.Records, nil
	}

	seed := c.Int64(seedFlag.Name)
	count := c.Int(countFlag.Name)
	slog.Debug("generating cohort", "seed", seed, "count", count)

	records, err := carrier.Generate(seed, count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate records: %w", err)
	}
	return records, nil
}

// resolveScoredCohort resolves records like resolveCohort and pairs them
// with risk scores. Stored snapshot scores are reused when present,
// otherwise the cohort is scored with the configured weights.
func resolveScoredCohort(c *urfave.Context) ([]carrier.Record, map[string]score.RiskScore, error) {
	cfg := getConfig(c)

	if id := c.String(snapshotFlag.Name); id != "" {
		d, err := cfg.Store.GetSnapshot(id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
		}
		if len(d.Scores) > 0 {
			slog.Debug("reusing snapshot scores", "id", id, "records", len(d.Records))
			return d.Records, d.Scores, nil
		}

		scores, err := scoreRecords(cfg, d.Records)
		if err != nil {
			return nil, nil, err
		}
		return d.Records, scores, nil
	}

	records, err := resolveCohort(c)
	if err != nil {
		return nil, nil, err
	}

	scores, err := scoreRecords(cfg, records)
	if err != nil {
		return nil, nil, err
	}
	return records, scores, nil
}

func scoreRecords(cfg *appConfig, records []carrier.Record) (map[string]score.RiskScore, error) {
	engine, err := score.NewEngine(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring engine: %w", err)
	}

	scores, err := engine.Score(records)
	if err != nil {
		return nil, fmt.Errorf("failed to score records: %w", err)
	}
	return scores, nil
}
