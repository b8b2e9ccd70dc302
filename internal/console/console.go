// Package console is the terminal collaborator of a running system: it
// prints colored messages and reads prompts, names and passwords.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette, tuned for dark terminal backgrounds.
const (
	ColorNotice  = lipgloss.Color("#06B6D4") // cyan
	ColorSuccess = lipgloss.Color("#10B981") // green
	ColorError   = lipgloss.Color("#EF4444") // red
	ColorPrompt  = lipgloss.Color("#F59E0B") // amber
	ColorInput   = lipgloss.Color("#22C55E") // light green
)

const clearSequence = "\x1b[H\x1b[2J"

// Console reads user input and writes styled output.
type Console struct {
	in  *bufio.Reader
	fd  int // terminal descriptor for hidden password input, -1 if none
	out io.Writer

	notice  lipgloss.Style
	success lipgloss.Style
	errorS  lipgloss.Style
	prompt  lipgloss.Style
	input   lipgloss.Style
}

// New creates a console over arbitrary streams. Colors are only emitted
// when out is a color-capable terminal.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)

	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}

	return &Console{
		in:      bufio.NewReader(in),
		fd:      fd,
		out:     out,
		notice:  r.NewStyle().Foreground(ColorNotice),
		success: r.NewStyle().Foreground(ColorSuccess),
		errorS:  r.NewStyle().Foreground(ColorError),
		prompt:  r.NewStyle().Foreground(ColorPrompt),
		input:   r.NewStyle().Foreground(ColorInput),
	}
}

// Std is the console over the process's stdin and stdout.
func Std() *Console {
	return New(os.Stdin, os.Stdout)
}

func (c *Console) write(s string) {
	// output errors on a terminal have nowhere to be reported
	_, _ = io.WriteString(c.out, s)
}

// Log prints a plain line.
func (c *Console) Log(msg string) {
	c.write(msg + "\n")
}

// Notice prints a highlighted line.
func (c *Console) Notice(msg string) {
	c.write(c.notice.Render(msg) + "\n")
}

// Success prints a line in the success color.
func (c *Console) Success(msg string) {
	c.write(c.success.Render(msg) + "\n")
}

// Error prints a line in the error color.
func (c *Console) Error(msg string) {
	c.write(c.errorS.Render(msg) + "\n")
}

// Clear wipes the screen.
func (c *Console) Clear() {
	c.write(clearSequence)
}

// Input shows "prefix: " and reads one line without its line ending.
// io.EOF is returned only when the stream ends before any character.
func (c *Console) Input(prefix string) (string, error) {
	c.write(c.input.Render(prefix + ": "))
	return c.readLine()
}

// Password is Input with echo disabled when stdin is a terminal.
func (c *Console) Password(prefix string) (string, error) {
	if c.fd < 0 {
		return c.Input(prefix)
	}
	c.write(c.input.Render(prefix + ": "))
	secret, err := term.ReadPassword(c.fd)
	c.write("\n")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}

// Prompt shows the shell prompt "user@system # " and reads a command line.
func (c *Console) Prompt(user, system string) (string, error) {
	c.write(c.prompt.Render(fmt.Sprintf("%s@%s # ", user, system)))
	return c.readLine()
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
