package main

import (
	"fmt"

	"virtualos/internal/config"
	"virtualos/internal/logging"
	"virtualos/internal/state"

	"github.com/spf13/cobra"
)

var (
	logger = logging.GetLogger().WithPrefix("cli")
)

// app carries what the subcommands share once flags are parsed.
type app struct {
	configFile string
	verbose    int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "vos",
		Short:         "Run virtual systems stored in .vos containers",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/vos/config.yaml)")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	flags.String("log-level", "", "log level: error, warn, info, debug or trace")
	flags.String("state-file", "", "file remembering known systems")

	cmd.AddCommand(a.bootCmd())
	cmd.AddCommand(a.installCmd())
	cmd.AddCommand(a.mountCmd())
	cmd.AddCommand(a.systemsCmd())
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	switch {
	case a.verbose >= 2:
		level = logging.LevelTrace
	case a.verbose == 1 && level < logging.LevelDebug:
		level = logging.LevelDebug
	}
	logging.GetLogger().SetLevel(level)

	if cfg.File != "" {
		logger.Debug("Using config file %s", cfg.File)
	}
	return nil
}

func (a *app) stateManager() (*state.Manager, error) {
	m, err := state.NewManager(a.cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("opening known systems: %w", err)
	}
	return m, nil
}
