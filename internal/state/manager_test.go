package state

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "vos", "systems.json"))
	require.NoError(t, err)
	return m
}

func TestLoadMissing(t *testing.T) {
	m := newTestManager(t)

	reg, err := m.Load()
	require.NoError(t, err)
	assert.Empty(t, reg.Systems)
	assert.Equal(t, 1, reg.Version)

	_, err = os.Stat(m.Path())
	assert.True(t, os.IsNotExist(err), "loading must not create the file")
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestManager(t)
	installed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	booted := installed.Add(time.Hour)

	reg, err := m.Load()
	require.NoError(t, err)
	reg.MarkInstalled("/vms/a.vos", "alpha", installed)
	reg.MarkBooted("/vms/a.vos", booted)
	reg.Record("/vms/b.vos", "")
	require.NoError(t, m.Save(reg))

	loaded, err := m.Load()
	require.NoError(t, err)

	want := []SystemRecord{
		{Path: "/vms/a.vos", Name: "alpha", InstalledAt: installed, LastBootedAt: booted},
		{Path: "/vms/b.vos"},
	}
	if diff := cmp.Diff(want, loaded.Sorted()); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "/vms/a.vos", loaded.LastBooted)
}

func TestLoadCorrupt(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.Path(), []byte("{not json"), 0o600))

	_, err := m.Load()
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Update(func(r *Registry) error {
		r.Record("/vms/a.vos", "alpha")
		return nil
	}))

	boom := fmt.Errorf("boom")
	assert.ErrorIs(t, m.Update(func(r *Registry) error {
		r.Forget("/vms/a.vos")
		return boom
	}), boom)

	reg, err := m.Load()
	require.NoError(t, err)
	assert.Contains(t, reg.Systems, "/vms/a.vos", "a failed update is not saved")
}

func TestRecordKeepsName(t *testing.T) {
	reg := newRegistry()
	reg.Record("/a.vos", "alpha")
	reg.Record("/a.vos", "")
	assert.Equal(t, "alpha", reg.Systems["/a.vos"].Name)

	reg.MarkBooted("/a.vos", time.Now())
	assert.True(t, reg.Forget("/a.vos"))
	assert.Empty(t, reg.LastBooted)
	assert.False(t, reg.Forget("/a.vos"))
}

func TestBackupRotation(t *testing.T) {
	m := newTestManager(t)
	m.backupCount = 2

	for i := 0; i < 5; i++ {
		reg := newRegistry()
		reg.Record(fmt.Sprintf("/vms/%d.vos", i), "")
		require.NoError(t, m.Save(reg))
	}

	entries, err := os.ReadDir(m.backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
