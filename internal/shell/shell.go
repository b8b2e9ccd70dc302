// Package shell implements the command registry and the line processor of
// a running system.
//
// A Processor handles exactly one input line per call. The read/dispatch
// loop belongs to the caller, which stops at the first status other than
// Processed.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"virtualos/internal/fs"
	"virtualos/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("shell")

	// ErrDuplicateAlias indicates two commands claiming the same alias
	ErrDuplicateAlias = errors.New("duplicate command alias")

	// ErrInvalidAlias indicates an empty or whitespace-containing alias
	ErrInvalidAlias = errors.New("invalid command alias")
)

// Status is the outcome of processing one line.
type Status int

const (
	// Processed means keep reading lines.
	Processed Status = iota
	// RebootRequest ends the session and asks for a reboot.
	RebootRequest
	// ShutdownRequest ends the session and asks for a shutdown.
	ShutdownRequest
)

func (s Status) String() string {
	switch s {
	case Processed:
		return "Processed"
	case RebootRequest:
		return "RebootRequest"
	case ShutdownRequest:
		return "ShutdownRequest"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// FileSystem is what commands need from the virtual file system.
type FileSystem interface {
	IsFile(input string, cwd fs.VirtualPath) bool
	IsDirectory(input string, cwd fs.VirtualPath) bool
	ReadFile(input string, cwd fs.VirtualPath) (string, error)
	List(input string, cwd fs.VirtualPath) ([]fs.EntryInfo, error)
	ContainerPath() string
}

// Output is where commands report to the user.
type Output interface {
	Log(msg string)
	Error(msg string)
	Clear()
}

// Session is the per-login state handed to every command.
type Session struct {
	FS       FileSystem
	Out      Output
	Location fs.VirtualPath // current location, written only by cd
	User     string
	System   string
}

// Command is one shell behavior, selected by any of its aliases.
type Command interface {
	Aliases() []string
	Help() string
	Execute(s *Session, args []string) Status
}

var helpFlags = map[string]bool{
	"help":   true,
	"--help": true,
	"-h":     true,
}

// IsHelpRequested reports whether the first argument asks for usage.
func IsHelpRequested(args []string) bool {
	return len(args) > 0 && helpFlags[args[0]]
}

// Registry maps aliases to commands. It is immutable once built.
type Registry struct {
	byAlias  map[string]Command
	commands []Command
}

// NewRegistry builds a registry, rejecting empty or overlapping aliases.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{byAlias: make(map[string]Command)}
	for _, cmd := range cmds {
		aliases := cmd.Aliases()
		if len(aliases) == 0 {
			return nil, fmt.Errorf("%w: %T has no aliases", ErrInvalidAlias, cmd)
		}
		for _, alias := range aliases {
			if alias == "" || strings.ContainsAny(alias, " \t\r\n") {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAlias, alias)
			}
			if _, taken := r.byAlias[alias]; taken {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateAlias, alias)
			}
			r.byAlias[alias] = cmd
		}
		r.commands = append(r.commands, cmd)
	}
	logger.Debug("Registered %d commands under %d aliases", len(r.commands), len(r.byAlias))
	return r, nil
}

// Lookup finds the command registered under alias (exact match).
func (r *Registry) Lookup(alias string) (Command, bool) {
	cmd, ok := r.byAlias[alias]
	return cmd, ok
}

// Commands returns the commands in registration order.
func (r *Registry) Commands() []Command {
	return append([]Command(nil), r.commands...)
}

// Processor dispatches input lines for one session.
type Processor struct {
	registry *Registry
	session  *Session
}

// NewProcessor binds a registry to a session.
func NewProcessor(registry *Registry, session *Session) *Processor {
	return &Processor{registry: registry, session: session}
}

// Session returns the session the processor works on.
func (p *Processor) Session() *Session {
	return p.session
}

// ProcessLine tokenizes raw on whitespace (there is no quoting) and runs
// the command named by the first token.
func (p *Processor) ProcessLine(raw string) Status {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Processed
	}

	cmd, ok := p.registry.Lookup(tokens[0])
	if !ok {
		logger.Debug("Unknown command %q", tokens[0])
		p.session.Out.Error(fmt.Sprintf("Unknown command: %s. Type 'help' to list commands.", tokens[0]))
		return Processed
	}

	logger.Debug("Executing %q with %d args in %s", tokens[0], len(tokens)-1, p.session.Location)
	status := cmd.Execute(p.session, tokens[1:])
	if status != Processed {
		logger.Info("Command %q requested %s", tokens[0], status)
	}
	return status
}
