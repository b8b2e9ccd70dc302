// Package state persists the registry of known system containers.
package state

import (
	"sort"
	"time"
)

// SystemRecord is one container the user has installed or booted.
type SystemRecord struct {
	// Absolute path of the container
	Path string `json:"path"`

	// System name read from the container, if known
	Name string `json:"name,omitempty"`

	InstalledAt  time.Time `json:"installed_at,omitzero"`
	LastBootedAt time.Time `json:"last_booted_at,omitzero"`
}

// Registry is the persisted set of known systems, keyed by path.
type Registry struct {
	Systems map[string]SystemRecord `json:"systems"`

	// Path of the most recently booted system
	LastBooted string `json:"last_booted,omitempty"`

	// Version for future compatibility
	Version int `json:"version"`
}

func newRegistry() *Registry {
	return &Registry{
		Systems: make(map[string]SystemRecord),
		Version: 1,
	}
}

// Record adds or updates a system. A non-empty name replaces the stored one.
func (r *Registry) Record(path, name string) SystemRecord {
	rec, ok := r.Systems[path]
	if !ok {
		rec = SystemRecord{Path: path}
	}
	if name != "" {
		rec.Name = name
	}
	r.Systems[path] = rec
	return rec
}

// MarkInstalled records a freshly installed system.
func (r *Registry) MarkInstalled(path, name string, at time.Time) {
	rec := r.Record(path, name)
	rec.InstalledAt = at
	r.Systems[path] = rec
}

// MarkBooted records a boot and makes path the last booted system.
func (r *Registry) MarkBooted(path string, at time.Time) {
	rec := r.Record(path, "")
	rec.LastBootedAt = at
	r.Systems[path] = rec
	r.LastBooted = path
}

// Forget drops a system.
func (r *Registry) Forget(path string) bool {
	if _, ok := r.Systems[path]; !ok {
		return false
	}
	delete(r.Systems, path)
	if r.LastBooted == path {
		r.LastBooted = ""
	}
	return true
}

// Sorted returns the records ordered by path.
func (r *Registry) Sorted() []SystemRecord {
	records := make([]SystemRecord, 0, len(r.Systems))
	for _, rec := range r.Systems {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records
}
