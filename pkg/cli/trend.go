package cli

import (
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/carrier"
)

var (
	carrierFlag = &urfave.StringFlag{
		Name:  "carrier",
		Usage: "USDOT carrier ID (e.g. USDOT100042)",
	}

	monthsFlag = &urfave.IntFlag{
		Name:  "months",
		Usage: "Number of months in the trend series",
		Value: carrier.TrendMonthsDefault,
	}

	trendCmd = &urfave.Command{
		Name:    "trend",
		Aliases: []string{"t"},
		Usage:   "Emit the monthly violation trend series for a carrier",
		Action:  cmdTrend,
		Flags: []urfave.Flag{
			carrierFlag,
			monthsFlag,
			snapshotFlag,
		},
	}
)

func cmdTrend(c *urfave.Context) error {
	id := c.String(carrierFlag.Name)
	if id == "" {
		return urfave.ShowSubcommandHelp(c)
	}

	if snapID := c.String(snapshotFlag.Name); snapID != "" {
		cfg := getConfig(c)
		d, err := cfg.Store.GetSnapshot(snapID)
		if err != nil {
			return fmt.Errorf("failed to load snapshot %s: %w", snapID, err)
		}

		found := false
		for _, r := range d.Records {
			if r.CarrierID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("carrier %s not found in snapshot %s", id, snapID)
		}
	}

	months := c.Int(monthsFlag.Name)
	slog.Debug("building violation trend", "carrier", id, "months", months)

	series, err := carrier.ViolationTrend(id, months)
	if err != nil {
		return fmt.Errorf("failed to build trend: %w", err)
	}

	if err := encode(series); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", series, err)
	}

	return nil
}
