package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"virtualos/internal/fs"
	"virtualos/internal/system"

	"github.com/spf13/cobra"
)

func (a *app) mountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <container.vos> <mountpoint>",
		Short: "Expose a container read-only through FUSE",
		Long: `Mount a container's file tree read-only until interrupted.

The mount is removed on SIGINT or SIGTERM.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mount(cmd.Context(), args[0], args[1])
		},
	}
}

func (a *app) mount(ctx context.Context, container, mountPoint string) error {
	path, err := absContainer(container)
	if err != nil {
		return err
	}
	if err := system.ValidateContainerPath(path); err != nil {
		return err
	}

	vfs, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer vfs.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Mounting %s at %s", path, mountPoint)
	return fs.Mount(ctx, vfs, filepath.Clean(mountPoint))
}
