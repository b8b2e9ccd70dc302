// Package system runs one session of a virtual machine stored in a
// container file, and supervises reboots across sessions.
package system

import (
	"errors"
	"fmt"
	"io"

	"virtualos/internal/auth"
	"virtualos/internal/fs"
	"virtualos/internal/logging"
	"virtualos/internal/shell"
)

var (
	logger = logging.GetLogger().WithPrefix("system")
)

// ExitCode tells the boot supervisor what to do after a session ends.
type ExitCode int

const (
	Shutdown ExitCode = iota
	Reboot
	SystemBroken
)

func (c ExitCode) String() string {
	switch c {
	case Shutdown:
		return "Shutdown"
	case Reboot:
		return "Reboot"
	case SystemBroken:
		return "SystemBroken"
	default:
		return fmt.Sprintf("ExitCode(%d)", int(c))
	}
}

// Terminal is the console a system talks to.
type Terminal interface {
	auth.Prompter
	shell.Output
	Notice(msg string)
	Prompt(user, system string) (string, error)
}

// Options tune a system. The zero value uses bcrypt and the built-in
// commands.
type Options struct {
	Comparer auth.Comparer
	Registry func() (*shell.Registry, error)
}

// System is one boot of a container. Start may be called once; a reboot
// builds a new System so the container is reopened.
type System struct {
	path string
	term Terminal
	opts Options

	fs        *fs.VFS
	info      Info
	user      auth.User
	processor *shell.Processor
}

// New prepares a system for the container at path. Nothing is opened
// until Start.
func New(path string, term Terminal, opts Options) *System {
	if opts.Registry == nil {
		opts.Registry = shell.NewDefaultRegistry
	}
	return &System{path: path, term: term, opts: opts}
}

// Start opens the container, logs a user in and runs the command loop.
// The container is closed on every return path.
func (s *System) Start() ExitCode {
	s.term.Clear()

	vfs, err := fs.Open(s.path)
	if err != nil {
		logger.Error("Failed to open %s: %v", s.path, err)
		s.term.Error("Could not run the system.")
		return SystemBroken
	}
	s.fs = vfs
	defer s.clear()

	s.term.Log("Welcome to the system.")

	if err := s.loadInfo(); err != nil {
		logger.Error("%v", err)
		s.term.Error("System's broken: No system information file.")
		s.term.Error("An error occurred while starting the system.")
		return SystemBroken
	}

	if err := s.login(); err != nil {
		if errors.Is(err, io.EOF) {
			logger.Info("Input closed during login")
			return Shutdown
		}
		logger.Error("Login failed: %v", err)
		if errors.Is(err, auth.ErrCredentialsMissing) {
			s.term.Error("System's broken: User files not found in /sys/usr/")
		}
		s.term.Error("Error while logging into the system")
		return SystemBroken
	}

	registry, err := s.opts.Registry()
	if err != nil {
		logger.Error("Command registry: %v", err)
		s.term.Error("An error occurred while starting the system.")
		return SystemBroken
	}

	session := &shell.Session{
		FS:       s.fs,
		Out:      s.term,
		Location: s.homeLocation(),
		User:     s.user.Name,
		System:   s.info.SystemName,
	}
	s.processor = shell.NewProcessor(registry, session)

	if s.runCommandProcessor() == shell.RebootRequest {
		return Reboot
	}
	return Shutdown
}

// runCommandProcessor feeds prompt lines to the processor until it asks
// to stop. Closed input counts as a shutdown request.
func (s *System) runCommandProcessor() shell.Status {
	for {
		line, err := s.term.Prompt(s.user.Name, s.info.SystemName)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("Reading command: %v", err)
			}
			return shell.ShutdownRequest
		}
		if status := s.processor.ProcessLine(line); status != shell.Processed {
			return status
		}
	}
}

func (s *System) loadInfo() error {
	text, err := s.fs.ReadFile(InfoFile, fs.Root)
	if err != nil {
		return fmt.Errorf("loading system information: %w", err)
	}
	info, err := DecodeInfo([]byte(text))
	if err != nil {
		return err
	}
	s.info = info
	logger.Debug("Loaded system %q", info.SystemName)
	return nil
}

func (s *System) login() error {
	user, err := auth.NewGate(s.fs, s.term, s.opts.Comparer).Login()
	if err != nil {
		return err
	}
	s.user = user
	s.term.Notice(fmt.Sprintf("Logged in as %s.", user.Name))
	return nil
}

// homeLocation is /home/<user> when the container has it, else the root.
func (s *System) homeLocation() fs.VirtualPath {
	home := fs.NewVirtualPath("/home").Join(s.user.Name)
	if _, ok := s.fs.DirInfo(home); ok {
		return home
	}
	return fs.Root
}

// clear drops everything the session held in memory and closes the
// container.
func (s *System) clear() {
	if err := s.fs.Close(); err != nil {
		logger.Warn("Closing %s: %v", s.path, err)
	}
	s.processor = nil
}
