package cli

import (
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/carrier"
	"github.com/velocitymatch/vmctl/pkg/score"
)

const (
	generateSeedDefault  = 42
	generateCountDefault = 500
)

var (
	seedFlag = &urfave.Int64Flag{
		Name:  "seed",
		Usage: "Seed for the deterministic record generator",
		Value: generateSeedDefault,
	}

	countFlag = &urfave.IntFlag{
		Name:  "count",
		Usage: "Number of carrier records to generate",
		Value: generateCountDefault,
	}

	saveFlag = &urfave.BoolFlag{
		Name:  "save",
		Usage: "Score the generated records and persist them as a snapshot",
	}

	generateCmd = &urfave.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Generate a deterministic carrier cohort",
		Action:  cmdGenerate,
		Flags: []urfave.Flag{
			seedFlag,
			countFlag,
			saveFlag,
		},
	}
)

func cmdGenerate(c *urfave.Context) error {
	seed := c.Int64(seedFlag.Name)
	count := c.Int(countFlag.Name)

	slog.Debug("generating carriers", "seed", seed, "count", count)
	records, err := carrier.Generate(seed, count)
	if err != nil {
		return fmt.Errorf("failed to generate records: %w", err)
	}

	if !c.Bool(saveFlag.Name) {
		return encode(records)
	}

	cfg := getConfig(c)

	engine, err := score.NewEngine(cfg.Scoring)
	if err != nil {
		return fmt.Errorf("failed to create scoring engine: %w", err)
	}

	scores, err := engine.Score(records)
	if err != nil {
		return fmt.Errorf("failed to score records: %w", err)
	}

	snap, err := cfg.Store.SaveSnapshot(seed, records, scores)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := encode(snap); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", snap, err)
	}

	return nil
}
