package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"virtualos/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("state")
)

// DefaultBackupCount is how many registry backups are kept.
const DefaultBackupCount = 5

// Manager loads and saves the registry file
type Manager struct {
	statePath   string
	backupDir   string
	backupCount int
	mu          sync.Mutex
}

// NewManager creates a manager for the registry file at statePath. It
// ensures the file's directory and the backup directory exist.
func NewManager(statePath string) (*Manager, error) {
	logger.Debug("Creating state manager for %s", statePath)

	absPath, err := filepath.Abs(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path %s: %w", statePath, err)
	}

	stateDir := filepath.Dir(absPath)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	backupDir := filepath.Join(stateDir, ".vos-backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}

	return &Manager{
		statePath:   absPath,
		backupDir:   backupDir,
		backupCount: DefaultBackupCount,
	}, nil
}

// Path is the registry file location.
func (sm *Manager) Path() string {
	return sm.statePath
}

// Load reads the registry. A missing or empty file yields an empty
// registry; nothing is written until Save.
func (sm *Manager) Load() (*Registry, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, err := os.ReadFile(sm.statePath)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		logger.Debug("No registry at %s, starting empty", sm.statePath)
		return newRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	reg := newRegistry()
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", sm.statePath, err)
	}
	if reg.Systems == nil {
		reg.Systems = make(map[string]SystemRecord)
	}
	for path, rec := range reg.Systems {
		rec.Path = path
		reg.Systems[path] = rec
	}

	logger.Trace("Loaded %d known system(s)", len(reg.Systems))
	return reg, nil
}

// Save writes the registry, backing up the previous file first.
func (sm *Manager) Save(reg *Registry) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.createBackup(); err != nil {
		logger.Warn("Failed to create backup: %v", err)
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// replaced by rename, never truncated in place
	tmp := sm.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, sm.statePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	logger.Debug("Saved %d known system(s) to %s", len(reg.Systems), sm.statePath)
	return nil
}

// Update loads the registry, applies fn and saves the result.
func (sm *Manager) Update(fn func(*Registry) error) error {
	reg, err := sm.Load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return sm.Save(reg)
}

// createBackup copies the current registry file into the backup directory
func (sm *Manager) createBackup() error {
	data, err := os.ReadFile(sm.statePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102-150405.000000000")
	backupPath := filepath.Join(sm.backupDir, fmt.Sprintf("systems-%s.json", timestamp))

	logger.Trace("Creating backup: %s", backupPath)
	if err := os.WriteFile(backupPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return sm.cleanupOldBackups()
}

// cleanupOldBackups keeps only the newest backupCount backups
func (sm *Manager) cleanupOldBackups() error {
	entries, err := os.ReadDir(sm.backupDir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, entry.Name())
		}
	}

	// timestamped names sort oldest first
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for i := sm.backupCount; i < len(names); i++ {
		path := filepath.Join(sm.backupDir, names[i])
		logger.Trace("Removing old backup: %s", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", path, err)
		}
	}

	return nil
}
