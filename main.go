package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tusk-sh/tusk/internal/commands"
	"github.com/tusk-sh/tusk/internal/console"
	"github.com/tusk-sh/tusk/internal/core/agent"
	"github.com/tusk-sh/tusk/internal/core/config"
	"github.com/tusk-sh/tusk/internal/tusk"
	"github.com/tusk-sh/tusk/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tuskApp   = &tusk.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tusk",
		Usage:     "Turn natural language into reviewed shell commands",
		UsageText: "tusk [global options] command [command options]",
		Description: `Tusk turns plain-language requests into shell command plans, shows
them for review, backs up any files the plan would modify, and keeps a
ledger of what ran so it can be rolled back.

Run 'tusk' with no arguments to open the interactive prompt.
Run 'tusk ask "<request>"' for a one-shot request.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TUSK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tusk.log)",
				Sources:     cli.EnvVars("TUSK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TUSK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TUSK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show the plan without executing anything",
				Destination: &flags.DryRun,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "answer yes to every confirmation prompt",
				Destination: &flags.Yes,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/tusk.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tusk.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg.DataDir = flags.DataDir
			flags.Config = &cfg

			con := console.New(os.Stdout)
			gen := agent.New(cfg.Agent)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*tuskApp = *tusk.NewApp(cfg, con, gen)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	repl := commands.NewRepl(flags, tuskApp)

	app = commands.NewAskCmd(flags, tuskApp).Register(app)
	app = commands.NewHistoryCmd(flags, tuskApp).Register(app)
	app = commands.NewBackupsCmd(flags, tuskApp).Register(app)
	app = commands.NewRollbackCmd(flags, tuskApp).Register(app)

	// Open the interactive prompt when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tusk --help' for usage", c.Args().First())
		}
		return repl.Run(ctx)
	}

	exitCode := 0
	if runErr := app.Run(ctx, os.Args); runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
