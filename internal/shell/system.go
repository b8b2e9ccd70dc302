package shell

import (
	"fmt"
	"strings"
)

// WhoAmI prints the logged-in user.
type WhoAmI struct{}

func (WhoAmI) Aliases() []string { return []string{"whoami"} }

func (WhoAmI) Help() string { return "whoami to print the current user." }

func (c WhoAmI) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	s.Out.Log(s.User)
	return Processed
}

// SystemInfo prints the system name and its container file.
type SystemInfo struct{}

func (SystemInfo) Aliases() []string { return []string{"sysinfo"} }

func (SystemInfo) Help() string { return "sysinfo to print information about the system." }

func (c SystemInfo) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	s.Out.Log(fmt.Sprintf("System name: %s\nContainer:   %s", s.System, s.FS.ContainerPath()))
	return Processed
}

// ClearScreen wipes the terminal.
type ClearScreen struct{}

func (ClearScreen) Aliases() []string { return []string{"clear", "cls"} }

func (ClearScreen) Help() string { return "clear/cls to clear the screen." }

func (c ClearScreen) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	s.Out.Clear()
	return Processed
}

// Reboot ends the session and asks for a restart.
type Reboot struct{}

func (Reboot) Aliases() []string { return []string{"reboot"} }

func (Reboot) Help() string { return "reboot to restart the system." }

func (c Reboot) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	return RebootRequest
}

// Shutdown ends the session.
type Shutdown struct{}

func (Shutdown) Aliases() []string { return []string{"shutdown", "exit"} }

func (Shutdown) Help() string { return "shutdown/exit to turn the system off." }

func (c Shutdown) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	return ShutdownRequest
}

// Help lists every registered command with its usage.
type Help struct {
	registry *Registry
}

func (*Help) Aliases() []string { return []string{"help"} }

func (*Help) Help() string { return "help to list the available commands." }

func (c *Help) Execute(s *Session, args []string) Status {
	if c.registry == nil {
		s.Out.Error("No commands available.")
		return Processed
	}
	lines := make([]string, 0, len(c.registry.commands))
	for _, cmd := range c.registry.commands {
		lines = append(lines, "  "+cmd.Help())
	}
	s.Out.Log("Available commands:\n" + strings.Join(lines, "\n"))
	return Processed
}

// NewDefaultRegistry registers the built-in commands.
func NewDefaultRegistry() (*Registry, error) {
	help := &Help{}
	r, err := NewRegistry(
		ReadFile{},
		ChangeDirectory{},
		PrintLocation{},
		ListDirectory{},
		WhoAmI{},
		SystemInfo{},
		ClearScreen{},
		help,
		Reboot{},
		Shutdown{},
	)
	if err != nil {
		return nil, err
	}
	help.registry = r
	return r, nil
}
