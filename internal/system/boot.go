package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ContainerSuffix is the required extension of container files.
const ContainerSuffix = ".vos"

// DefaultRebootDelay is the pause between a reboot request and the next boot.
const DefaultRebootDelay = time.Second

var (
	// ErrSystemBroken indicates a session ended with SystemBroken
	ErrSystemBroken = errors.New("system could not run")

	// ErrNoSystemFile indicates a path that is not an existing .vos file
	ErrNoSystemFile = errors.New("no system file found")
)

// ValidateContainerPath checks that path is an existing regular file
// ending in ContainerSuffix.
func ValidateContainerPath(path string) error {
	if !strings.HasSuffix(path, ContainerSuffix) {
		return fmt.Errorf("%w: %s does not end with %s", ErrNoSystemFile, path, ContainerSuffix)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSystemFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNoSystemFile, path)
	}
	return nil
}

// Supervisor boots a container and restarts it on reboot requests.
type Supervisor struct {
	Path        string
	Term        Terminal
	Options     Options
	RebootDelay time.Duration

	// OnBoot, if set, runs before every boot with the boot count (from 1).
	OnBoot func(boot int)
}

// Run boots until a session shuts down (nil), breaks (ErrSystemBroken) or
// ctx is cancelled while waiting to reboot.
func (sv *Supervisor) Run(ctx context.Context) error {
	for boot := 1; ; boot++ {
		if sv.OnBoot != nil {
			sv.OnBoot(boot)
		}
		logger.Info("Booting %s (boot #%d)", sv.Path, boot)

		switch code := New(sv.Path, sv.Term, sv.Options).Start(); code {
		case Shutdown:
			sv.Term.Notice("System is shutting down...")
			return nil

		case Reboot:
			sv.Term.Notice("System's rebooting...")
			select {
			case <-time.After(sv.RebootDelay):
			case <-ctx.Done():
				return ctx.Err()
			}

		case SystemBroken:
			sv.Term.Error("System could not run, shutting down...")
			return fmt.Errorf("%w: %s", ErrSystemBroken, sv.Path)

		default:
			return fmt.Errorf("unexpected exit code %s", code)
		}
	}
}
