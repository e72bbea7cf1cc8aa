package cli

import (
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
)

var (
	snapshotIDFlag = &urfave.StringFlag{
		Name:     "id",
		Usage:    "Snapshot ID",
		Required: true,
	}

	dataCmd = &urfave.Command{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "Snapshot store operations",
		Subcommands: []*urfave.Command{
			{
				Name:    "state",
				Usage:   "Show row counts for each store table",
				Aliases: []string{"s"},
				Action:  cmdDataState,
			},
			{
				Name:    "snapshots",
				Usage:   "List saved snapshots",
				Aliases: []string{"ls"},
				Action:  cmdDataSnapshots,
			},
			{
				Name:    "delete",
				Usage:   "Delete a snapshot and its records",
				Aliases: []string{"rm"},
				Action:  cmdDataDelete,
				Flags: []urfave.Flag{
					snapshotIDFlag,
				},
			},
		},
	}
)

func cmdDataState(c *urfave.Context) error {
	cfg := getConfig(c)

	state, err := cfg.Store.State()
	if err != nil {
		return fmt.Errorf("failed to query data state: %w", err)
	}

	if err := encode(state); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", state, err)
	}

	return nil
}

func cmdDataSnapshots(c *urfave.Context) error {
	cfg := getConfig(c)

	list, err := cfg.Store.ListSnapshots()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if err := encode(list); err != nil {
		return fmt.Errorf("error encoding list: %+v: %w", list, err)
	}

	return nil
}

func cmdDataDelete(c *urfave.Context) error {
	id := c.String(snapshotIDFlag.Name)

	cfg := getConfig(c)
	if err := cfg.Store.DeleteSnapshot(id); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}

	slog.Info("snapshot deleted", "id", id)
	return nil
}
