package auth

import (
	"io"
	"testing"

	"virtualos/internal/fs"
	"virtualos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// scriptedPrompter answers prompts from a fixed list and then reports EOF.
type scriptedPrompter struct {
	answers []string
	prompts []string
	errors  []string
}

func (s *scriptedPrompter) next(prefix string) (string, error) {
	s.prompts = append(s.prompts, prefix)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *scriptedPrompter) Input(prefix string) (string, error)    { return s.next(prefix) }
func (s *scriptedPrompter) Password(prefix string) (string, error) { return s.next(prefix) }
func (s *scriptedPrompter) Error(msg string)                       { s.errors = append(s.errors, msg) }

func hash(t *testing.T, plain string) string {
	t.Helper()
	h, err := HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func credentialFS(t *testing.T, entries map[string]string) *fs.VFS {
	t.Helper()
	vfs, err := fs.Open(testutil.WriteContainer(t, entries))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vfs.Close() })
	return vfs
}

func TestLogin(t *testing.T) {
	vfs := credentialFS(t, map[string]string{
		"sys/usr/users.info":  "alice:x\ncarol:x\n",
		"sys/usr/passwd.info": "alice:" + hash(t, "secret") + "\n",
	})

	t.Run("correct password", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"alice", "secret"}}
		g := NewGate(vfs, p, nil)

		user, err := g.Login()
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, Authenticated, g.State())
		assert.Empty(t, p.errors)
		assert.Equal(t, []string{"System User", "alice's password"}, p.prompts)
	})

	t.Run("wrong password re-prompts", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"alice", "wrong", "alice", "secret"}}

		user, err := NewGate(vfs, p, nil).Login()
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, []string{"Invalid password for user: alice"}, p.errors)
		assert.Equal(t, []string{"System User", "alice's password", "System User", "alice's password"}, p.prompts)
	})

	t.Run("unknown user", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"bob", "alice", "secret"}}

		user, err := NewGate(vfs, p, nil).Login()
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, []string{"No user found with name bob"}, p.errors)
		assert.Equal(t, "System User", p.prompts[1], "unknown user is asked for a name again, not a password")
	})

	t.Run("user without password record", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"carol", "anything"}}
		g := NewGate(vfs, p, nil)

		_, err := g.Login()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []string{"Invalid password for user: carol"}, p.errors)
		assert.Equal(t, AwaitingName, g.State())
	})

	t.Run("empty name never matches", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{""}}

		_, err := NewGate(vfs, p, nil).Login()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []string{"No user found with name "}, p.errors)
	})

	t.Run("input ends", func(t *testing.T) {
		p := &scriptedPrompter{answers: []string{"alice"}}
		g := NewGate(vfs, p, nil)

		_, err := g.Login()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, AwaitingPassword, g.State())
	})
}

type fixedComparer bool

func (f fixedComparer) CompareWithHash(string, string) bool { return bool(f) }

func TestComparerIsDelegated(t *testing.T) {
	vfs := credentialFS(t, map[string]string{
		"sys/usr/users.info":  "alice:x\n",
		"sys/usr/passwd.info": "alice:not-a-real-hash\n",
	})

	ok, err := NewGate(vfs, &scriptedPrompter{}, fixedComparer(true)).ValidatePassword("alice", "whatever")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewGate(vfs, &scriptedPrompter{}, nil).ValidatePassword("alice", "whatever")
	require.NoError(t, err)
	assert.False(t, ok, "bcrypt rejects a malformed hash")
}

func TestMissingCredentialFiles(t *testing.T) {
	t.Run("no users file", func(t *testing.T) {
		vfs := credentialFS(t, map[string]string{"sys/usr/passwd.info": "alice:x\n"})
		p := &scriptedPrompter{answers: []string{"alice"}}

		_, err := NewGate(vfs, p, nil).Login()
		assert.ErrorIs(t, err, ErrCredentialsMissing)
	})

	t.Run("no passwords file", func(t *testing.T) {
		vfs := credentialFS(t, map[string]string{"sys/usr/users.info": "alice:x\n"})
		p := &scriptedPrompter{answers: []string{"alice", "secret"}}

		_, err := NewGate(vfs, p, nil).Login()
		assert.ErrorIs(t, err, ErrCredentialsMissing)
	})
}

func TestLookup(t *testing.T) {
	lines := []string{"alice:x", "", "bob:$2a$04$abc\r", "carol"}

	tests := []struct {
		name  string
		field string
		found bool
	}{
		{"alice", "x", true},
		{"bob", "$2a$04$abc", true},
		{"carol", "", true},
		{"dave", "", false},
		{"", "", false},
		{"ali", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, found := lookup(lines, tt.name)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.field, field)
		})
	}
}
