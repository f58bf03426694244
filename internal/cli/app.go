// Package cli is the nbnet command line: validator deposits and exits, ledger
// inspection and boot peer resolution against a running environment.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/PolyhedraZK/nbnet/internal/config"
	"github.com/PolyhedraZK/nbnet/internal/inventory"
	"github.com/PolyhedraZK/nbnet/internal/ledger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	flagEnvFile  = "env-file"
	flagLogLevel = "log-level"
	flagNodes    = "nodes"
	flagAsync    = "async"
)

// App returns the nbnet application.
func App() *cli.App {
	return &cli.App{
		Name:  "nbnet",
		Usage: "manage validators and boot peers of a multi-node Ethereum testnet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagEnvFile,
				Usage: "environment file; overrides " + config.EnvPrefix + "_ENV_FILE",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "log level; overrides " + config.EnvPrefix + "_LOG_LEVEL",
			},
		},
		Commands: []*cli.Command{
			depositCommand(),
			exitCommand(),
			showCommand(),
			switchELCommand(),
			bootPeersCommand(),
		},
	}
}

// env is what every command works against.
type env struct {
	settings config.Settings
	logger   zerolog.Logger
	inv      *inventory.Inventory
	keeper   *ledger.Keeper
}

func setup(c *cli.Context) (*env, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagEnvFile) {
		settings.EnvFile = c.String(flagEnvFile)
	}
	if c.IsSet(flagLogLevel) {
		settings.LogLevel = c.String(flagLogLevel)
	}

	level, err := settings.Level()
	if err != nil {
		return nil, err
	}
	logger := newLogger(c.App.ErrWriter, level)

	inv, err := inventory.Open(logger, settings.EnvFile)
	if err != nil {
		return nil, err
	}

	return &env{
		settings: settings,
		logger:   logger,
		inv:      inv,
		keeper:   ledger.NewKeeper(logger, inventory.NewCustomData[ledger.Blob](inv)),
	}, nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().
		Logger()
}

// failureExit prints one line per failure and returns the non-zero exit error.
func failureExit(c *cli.Context, what string, failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	for _, f := range failures {
		fmt.Fprintln(c.App.ErrWriter, f)
	}
	return cli.Exit(fmt.Sprintf("%d %s failed", len(failures), what), 1)
}
