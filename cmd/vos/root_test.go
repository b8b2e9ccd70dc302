package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"virtualos/internal/system"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t     *testing.T
	state string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"VOS_LOG_LEVEL", "VOS_REBOOT_DELAY", "VOS_STATE_FILE", "VOS_BCRYPT_COST"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return &cli{t: t, state: filepath.Join(t.TempDir(), "systems.json")}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--state-file", c.state))
	err := cmd.Execute()
	return out.String(), err
}

func TestInstallBootAndList(t *testing.T) {
	c := newCLI(t)
	container := filepath.Join(t.TempDir(), "lab.vos")

	out, err := c.run("", "install", container, "--name", "lab", "--user", "alice", "--password", "secret", "--bcrypt-cost", "4")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Installed lab")

	out, err = c.run("alice\nsecret\npwd\nexit\n", "boot", container)
	require.NoError(t, err, out)
	assert.Contains(t, out, "alice@lab # ")
	assert.Contains(t, out, "/home/alice\n")
	assert.Contains(t, out, "System is shutting down...")

	out, err = c.run("", "systems")
	require.NoError(t, err)
	assert.Contains(t, out, "lab")
	assert.Contains(t, out, container)

	out, err = c.run("alice\nsecret\nreboot\nalice\nsecret\nshutdown\n", "boot", "--reboot-delay", "0s")
	require.NoError(t, err, out)
	assert.Contains(t, out, "System's rebooting...")
	assert.Equal(t, 2, strings.Count(out, "Welcome to the system."))
}

func TestInstallPromptsForPassword(t *testing.T) {
	c := newCLI(t)
	container := filepath.Join(t.TempDir(), "lab.vos")

	out, err := c.run("pw-a\npw-b\n", "install", container, "--name", "lab", "--user", "alice", "--user", "bob", "--bcrypt-cost", "4")
	require.NoError(t, err, out)
	assert.Contains(t, out, "alice's password: ")
	assert.Contains(t, out, "bob's password: ")

	out, err = c.run("bob\npw-b\nwhoami\nexit\n", "boot", container)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bob\n")
}

func TestInstallRefusesExisting(t *testing.T) {
	c := newCLI(t)
	container := filepath.Join(t.TempDir(), "lab.vos")
	require.NoError(t, os.WriteFile(container, []byte("x"), 0o644))

	_, err := c.run("", "install", container, "--name", "lab", "--user", "alice", "--password", "p", "--bcrypt-cost", "4")
	assert.Error(t, err)
}

func TestBootErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "boot")
	assert.ErrorContains(t, err, "no system was booted before")

	_, err = c.run("", "boot", filepath.Join(t.TempDir(), "missing.vos"))
	assert.ErrorIs(t, err, system.ErrNoSystemFile)

	broken := filepath.Join(t.TempDir(), "broken.vos")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	out, err := c.run("", "boot", broken)
	assert.ErrorIs(t, err, system.ErrSystemBroken)
	assert.Contains(t, out, "System could not run, shutting down...")
}

func TestSystemsForget(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "systems")
	require.NoError(t, err)
	assert.Contains(t, out, "No known systems")

	container := filepath.Join(t.TempDir(), "lab.vos")
	_, err = c.run("", "install", container, "--name", "lab", "--user", "alice", "--password", "p", "--bcrypt-cost", "4")
	require.NoError(t, err)

	out, err = c.run("", "systems", "forget", container)
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot "+container)

	_, err = c.run("", "systems", "forget", container)
	assert.Error(t, err)
}
