package fs

import (
	"testing"

	"virtualos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestFS(t *testing.T, entries map[string]string) *VFS {
	t.Helper()
	vfs, err := Open(testutil.WriteContainer(t, entries))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vfs.Close() })
	return vfs
}

func TestVFSExistence(t *testing.T) {
	vfs := setupTestFS(t, map[string]string{
		"home/notes.txt": "hello",
		"sys/":           "",
		"both":           "file side",
		"both/inner.txt": "inner",
	})
	home := NewVirtualPath("/home")

	tests := []struct {
		name  string
		input string
		cwd   VirtualPath
		file  bool
		dir   bool
	}{
		{"relative file", "notes.txt", home, true, false},
		{"absolute file", "/home/notes.txt", Root, true, false},
		{"implied directory", "/home", Root, false, true},
		{"explicit directory", "sys", Root, false, true},
		{"root", "/", home, false, true},
		{"parent from cwd", "..", home, false, true},
		{"stored as both", "/both", Root, true, true},
		{"absent", "missing.txt", home, false, false},
		{"absent nested", "/nowhere/at/all", Root, false, false},
		{"case sensitive", "/HOME/notes.txt", Root, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.file, vfs.IsFile(tt.input, tt.cwd), "IsFile")
			assert.Equal(t, tt.dir, vfs.IsDirectory(tt.input, tt.cwd), "IsDirectory")
		})
	}
}

func TestVFSReadFile(t *testing.T) {
	vfs := setupTestFS(t, map[string]string{
		"home/notes.txt": "hello",
		"both":           "file side",
		"both/inner.txt": "inner",
	})
	home := NewVirtualPath("/home")

	text, err := vfs.ReadFile("notes.txt", home)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = vfs.ReadFile("/both", home)
	require.NoError(t, err)
	assert.Equal(t, "file side", text, "file wins for reading")

	_, err = vfs.ReadFile("missing.txt", home)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = vfs.ReadFile("/home", Root)
	assert.ErrorIs(t, err, ErrFileNotFound, "directories are not files")

	fh, ok := vfs.GetFile("../home/notes.txt", home)
	require.True(t, ok)
	assert.Equal(t, "/home/notes.txt", fh.Path.String())
	data, err := fh.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, ok = vfs.GetFile("nope", home)
	assert.False(t, ok)
}

func TestVFSList(t *testing.T) {
	vfs := setupTestFS(t, map[string]string{
		"home/notes.txt":    "hello",
		"home/alice/a.txt":  "a",
		"home/alice/b.txt":  "b",
		"home/readme":       "r",
		"both":              "file side",
		"both/inner.txt":    "inner",
		"sys/usr/users.txt": "",
	})

	entries, err := vfs.List("/home", Root)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alice", "notes.txt", "readme"}, names)

	entries, err = vfs.List("both", Root)
	require.NoError(t, err, "directory wins for listing")
	require.Len(t, entries, 1)
	assert.Equal(t, "inner.txt", entries[0].Name)

	_, err = vfs.List("/home/notes.txt", Root)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestVFSAfterClose(t *testing.T) {
	vfs := setupTestFS(t, map[string]string{"home/notes.txt": "hello"})

	require.NoError(t, vfs.Close())
	require.NoError(t, vfs.Close())

	_, err := vfs.ReadFile("/home/notes.txt", Root)
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = vfs.List("/", Root)
	assert.ErrorIs(t, err, ErrNotOpen)

	assert.False(t, vfs.IsFile("/home/notes.txt", Root))
	assert.False(t, vfs.IsDirectory("/home", Root))
}
