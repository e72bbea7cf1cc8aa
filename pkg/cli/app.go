package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	urfave "github.com/urfave/cli/v2"
	"github.com/velocitymatch/vmctl/pkg/config"
	"github.com/velocitymatch/vmctl/pkg/data"
	"github.com/velocitymatch/vmctl/pkg/logging"
	"github.com/velocitymatch/vmctl/pkg/score"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "vmctl"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Snapshot store target, Sqlite file path or postgres:// URL (optional, defaults to $HOME/.vmctl/data.db)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	configDirFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Path to the config directory (optional, defaults to $HOME/.vmctl)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Home    string
	Target  string
	Debug   bool
	Store   *data.Store
	Scoring score.Config
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for carrier churn risk scoring and recruiting prospect ranking",
		Flags: []urfave.Flag{
			debugFlag,
			dbFlag,
			formatFlag,
			configDirFlag,
		},
		Commands: []*urfave.Command{
			generateCmd,
			scoreCmd,
			rankCmd,
			summaryCmd,
			trendCmd,
			dataCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			home := c.String(configDirFlag.Name)
			if home == "" {
				h, created, err := config.GetOrCreateHomeDir(appName)
				if err != nil {
					return fmt.Errorf("failed to resolve home dir: %w", err)
				}
				if created {
					slog.Debug("created home dir", "path", h)
				}
				home = h
			}

			cfg, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			target := c.String(dbFlag.Name)
			if target == "" {
				target = path.Join(home, data.DataFileName)
			}

			if err := data.Init(target); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			store, err := data.Open(target)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Home:    home,
				Target:  target,
				Debug:   c.Bool(debugFlag.Name),
				Store:   store,
				Scoring: cfg.Scoring,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.Store != nil {
				if err := cfg.Store.Close(); err != nil {
					slog.Debug("error closing store", "error", err)
				}
			}
			return nil
		},
	}
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
