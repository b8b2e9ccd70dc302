package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"virtualos/internal/console"
	"virtualos/internal/fs"
	"virtualos/internal/state"
	"virtualos/internal/system"

	"github.com/spf13/cobra"
)

func (a *app) bootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot [container.vos]",
		Short: "Boot a system container",
		Long: `Boot a system container and attach it to this terminal.

Without an argument the most recently booted system is started again.`,
		Example: `  vos boot lab.vos
  vos boot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boot(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().Duration("reboot-delay", system.DefaultRebootDelay, "pause between a reboot request and the next boot")
	return cmd
}

func (a *app) boot(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	mgr, err := a.stateManager()
	if err != nil {
		return err
	}
	reg, err := mgr.Load()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		if path, err = absContainer(args[0]); err != nil {
			return err
		}
	} else {
		if reg.LastBooted == "" {
			return errors.New("no container given and no system was booted before")
		}
		path = reg.LastBooted
		logger.Info("Booting last system %s", path)
	}
	if err := system.ValidateContainerPath(path); err != nil {
		return err
	}

	sv := &system.Supervisor{
		Path:        path,
		Term:        console.New(in, out),
		Options:     system.Options{},
		RebootDelay: a.cfg.RebootDelay,
		OnBoot: func(int) {
			err := mgr.Update(func(r *state.Registry) error {
				r.Record(path, systemName(path))
				r.MarkBooted(path, time.Now())
				return nil
			})
			if err != nil {
				logger.Warn("Could not remember %s: %v", path, err)
			}
		},
	}
	return sv.Run(ctx)
}

// systemName peeks at a container's name, empty when it cannot be read.
func systemName(path string) string {
	vfs, err := fs.Open(path)
	if err != nil {
		return ""
	}
	defer vfs.Close()

	text, err := vfs.ReadFile(system.InfoFile, fs.Root)
	if err != nil {
		return ""
	}
	info, err := system.DecodeInfo([]byte(text))
	if err != nil {
		logger.Debug("%s: %v", path, err)
		return ""
	}
	return info.SystemName
}

func absContainer(arg string) (string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	return path, nil
}
