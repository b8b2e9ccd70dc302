package shell

import (
	"fmt"
	"strings"

	"virtualos/internal/fs"
)

// ReadFile prints a file's text.
type ReadFile struct{}

func (ReadFile) Aliases() []string { return []string{"read", "cat"} }

func (ReadFile) Help() string { return "read/cat <file> to print the text of the file." }

func (c ReadFile) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	if len(args) < 1 {
		s.Out.Error("Specify file to read.")
		return Processed
	}

	if !s.FS.IsFile(args[0], s.Location) {
		s.Out.Error("You can only read files.")
		return Processed
	}

	text, err := s.FS.ReadFile(args[0], s.Location)
	if err != nil {
		logger.Error("read %s: %v", args[0], err)
		s.Out.Error(fmt.Sprintf("Could not read %s.", fs.Resolve(args[0], s.Location)))
		return Processed
	}
	s.Out.Log(text)
	return Processed
}

// ChangeDirectory moves the session's current location.
type ChangeDirectory struct{}

func (ChangeDirectory) Aliases() []string { return []string{"cd"} }

func (ChangeDirectory) Help() string { return "cd <directory> to change the current location." }

func (c ChangeDirectory) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	if len(args) < 1 {
		s.Out.Error("Specify directory to go to.")
		return Processed
	}

	if !s.FS.IsDirectory(args[0], s.Location) {
		s.Out.Error(fmt.Sprintf("No such directory: %s", args[0]))
		return Processed
	}
	s.Location = fs.Resolve(args[0], s.Location)
	return Processed
}

// PrintLocation prints the current location.
type PrintLocation struct{}

func (PrintLocation) Aliases() []string { return []string{"pwd"} }

func (PrintLocation) Help() string { return "pwd to print the current location." }

func (c PrintLocation) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	s.Out.Log(s.Location.String())
	return Processed
}

// ListDirectory prints the entries of a directory.
type ListDirectory struct{}

func (ListDirectory) Aliases() []string { return []string{"ls", "dir"} }

func (ListDirectory) Help() string {
	return "ls/dir [directory] to list a directory, the current location by default."
}

func (c ListDirectory) Execute(s *Session, args []string) Status {
	if IsHelpRequested(args) {
		s.Out.Log(c.Help())
		return Processed
	}
	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	if !s.FS.IsDirectory(target, s.Location) {
		s.Out.Error(fmt.Sprintf("No such directory: %s", target))
		return Processed
	}
	entries, err := s.FS.List(target, s.Location)
	if err != nil {
		logger.Error("ls %s: %v", target, err)
		s.Out.Error(fmt.Sprintf("Could not list %s.", fs.Resolve(target, s.Location)))
		return Processed
	}
	if len(entries) == 0 {
		return Processed
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			lines = append(lines, e.Name+fs.Separator)
			continue
		}
		lines = append(lines, fmt.Sprintf("%-32s %d B", e.Name, e.Size))
	}
	s.Out.Log(strings.Join(lines, "\n"))
	return Processed
}
