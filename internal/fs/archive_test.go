package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"virtualos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T, entries map[string]string) *Archive {
	t.Helper()
	a, err := OpenArchive(testutil.WriteContainer(t, entries))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestOpenArchiveErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := OpenArchive(filepath.Join(t.TempDir(), "nope.vos"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrArchiveOpen)

		var fsErr *Error
		require.True(t, errors.As(err, &fsErr))
		assert.Equal(t, OpOpen, fsErr.Op)
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.vos")
		require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0o644))

		_, err := OpenArchive(path)
		assert.ErrorIs(t, err, ErrArchiveOpen)
	})
}

func TestArchiveIndex(t *testing.T) {
	a := openTestArchive(t, map[string]string{
		"sys/":                "",
		"sys/usr/users.info":  "alice:x\n",
		"home/alice/todo.txt": "milk",
		"both":                "file side",
		"both/":               "",
	})

	t.Run("root always present", func(t *testing.T) {
		info, ok := a.Lookup("")
		require.True(t, ok)
		assert.True(t, info.IsDir)
	})

	t.Run("explicit and implied directories", func(t *testing.T) {
		for _, key := range []string{"sys/", "sys/usr/", "home/", "home/alice/"} {
			info, ok := a.Lookup(key)
			require.True(t, ok, key)
			assert.True(t, info.IsDir, key)
		}
	})

	t.Run("file metadata", func(t *testing.T) {
		info, ok := a.Lookup("home/alice/todo.txt")
		require.True(t, ok)
		assert.False(t, info.IsDir)
		assert.Equal(t, uint64(4), info.Size)
		assert.Equal(t, "todo.txt", info.Name)
	})

	t.Run("absence is not an error", func(t *testing.T) {
		_, ok := a.Lookup("home/bob/")
		assert.False(t, ok)
		_, ok = a.Lookup("home/alice")
		assert.False(t, ok, "directory key without separator is a different entry")
	})

	t.Run("file and directory coexist", func(t *testing.T) {
		file, ok := a.Lookup("both")
		require.True(t, ok)
		assert.False(t, file.IsDir)
		dir, ok := a.Lookup("both/")
		require.True(t, ok)
		assert.True(t, dir.IsDir)
	})
}

func TestArchiveReadAll(t *testing.T) {
	a := openTestArchive(t, map[string]string{
		"home/notes.txt": "hello",
		"empty.txt":      "",
	})

	data, err := a.ReadAll("home/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = a.ReadAll("empty.txt")
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = a.ReadAll("home/missing.txt")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = a.ReadAll("home/")
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestArchiveChildren(t *testing.T) {
	a := openTestArchive(t, map[string]string{
		"home/b.txt":        "b",
		"home/a.txt":        "a",
		"home/sub/deep.txt": "deep",
		"other.txt":         "x",
	})

	children, err := a.Children("home/")
	require.NoError(t, err)

	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names)
	assert.True(t, children[2].IsDir)

	root, err := a.Children("")
	require.NoError(t, err)
	assert.Len(t, root, 2)

	_, err = a.Children("other.txt")
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = a.Children("nowhere/")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestArchiveClose(t *testing.T) {
	path := testutil.WriteContainer(t, map[string]string{"home/notes.txt": "hello"})
	a, err := OpenArchive(path)
	require.NoError(t, err)
	require.True(t, a.IsOpen())

	require.NoError(t, a.Close())
	assert.False(t, a.IsOpen())

	// second close is a no-op
	assert.NoError(t, a.Close())

	_, err = a.ReadAll("home/notes.txt")
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = a.Children("")
	assert.ErrorIs(t, err, ErrNotOpen)

	_, ok := a.Lookup("home/notes.txt")
	assert.False(t, ok)

	var never *Archive
	assert.NoError(t, never.Close())

	// the same container can be opened again after close
	again, err := OpenArchive(path)
	require.NoError(t, err)
	defer again.Close()
	data, err := again.ReadAll("home/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
