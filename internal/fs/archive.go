package fs

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"virtualos/internal/logging"

	"github.com/klauspost/compress/zip"
)

var (
	archiveLogger = logging.GetLogger().WithPrefix("archive")
)

// EntryInfo describes one indexed container entry.
type EntryInfo struct {
	Key     string    // entry key, directories end with the separator
	Name    string    // last path element
	Size    uint64    // uncompressed size, 0 for directories
	IsDir   bool      // directory entry
	ModTime time.Time // modification time recorded in the archive
}

// Archive owns the open container handle and its in-memory entry index.
// The index is built once on open and never changes afterwards.
type Archive struct {
	path   string
	reader *zip.ReadCloser
	index  map[string]EntryInfo
	files  map[string]*zip.File
	mu     sync.RWMutex // guards reader during Close
}

// OpenArchive opens the container at physicalPath and indexes every entry.
// Directories implied by nested entries are indexed as well.
func OpenArchive(physicalPath string) (*Archive, error) {
	archiveLogger.Debug("Opening container: %s", physicalPath)

	reader, err := zip.OpenReader(physicalPath)
	if err != nil {
		archiveLogger.Error("Failed to open container %s: %v", physicalPath, err)
		return nil, NewFSError(OpOpen, physicalPath, fmt.Errorf("%w: %w", ErrArchiveOpen, err))
	}

	a := &Archive{
		path:   physicalPath,
		reader: reader,
		index:  make(map[string]EntryInfo, len(reader.File)),
		files:  make(map[string]*zip.File, len(reader.File)),
	}
	a.index[""] = EntryInfo{Key: "", Name: Separator, IsDir: true}

	for _, f := range reader.File {
		key, ok := normalizeKey(f.Name)
		if !ok {
			archiveLogger.Debug("Skipping unaddressable member %q", f.Name)
			continue
		}
		isDir := strings.HasSuffix(key, Separator)
		vp, _ := ParseEntryKey(key)

		info := EntryInfo{
			Key:     key,
			Name:    vp.Base(),
			IsDir:   isDir,
			ModTime: f.Modified,
		}
		if !isDir {
			info.Size = f.UncompressedSize64
		}
		a.index[key] = info
		a.files[key] = f
		a.addParents(vp.Parent(), f.Modified)
	}

	archiveLogger.Info("Indexed %d entries from %s", len(a.index), physicalPath)
	return a, nil
}

// addParents records implied directories up to the root.
func (a *Archive) addParents(dir VirtualPath, modTime time.Time) {
	for !dir.IsRoot() {
		key := dir.DirKey()
		if _, exists := a.index[key]; exists {
			return
		}
		archiveLogger.Trace("Adding implied directory %q", key)
		a.index[key] = EntryInfo{Key: key, Name: dir.Base(), IsDir: true, ModTime: modTime}
		dir = dir.Parent()
	}
}

// Path returns the physical container path.
func (a *Archive) Path() string {
	return a.path
}

// IsOpen reports whether Close has not been called yet.
func (a *Archive) IsOpen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reader != nil
}

// Lookup returns the metadata for key. A missing key, or a closed
// container, is reported through the boolean, never as an error.
func (a *Archive) Lookup(key string) (EntryInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.reader == nil {
		return EntryInfo{}, false
	}
	info, ok := a.index[key]
	archiveLogger.Trace("Lookup %q (exists=%v)", key, ok)
	return info, ok
}

// ReadAll reads the whole content of one file entry. The entry stream is
// closed before returning on every path.
func (a *Archive) ReadAll(key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.reader == nil {
		return nil, NewFSError(OpRead, key, ErrNotOpen)
	}
	info, ok := a.index[key]
	if !ok {
		return nil, NewFSError(OpRead, key, ErrEntryNotFound)
	}
	if info.IsDir {
		return nil, NewFSError(OpRead, key, ErrIsDirectory)
	}

	rc, err := a.files[key].Open()
	if err != nil {
		archiveLogger.Error("Failed to open entry %q: %v", key, err)
		return nil, NewFSError(OpRead, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		archiveLogger.Error("Failed to read entry %q: %v", key, err)
		return nil, NewFSError(OpRead, key, err)
	}
	archiveLogger.Trace("Read %d bytes from %q", len(data), key)
	return data, nil
}

// Children lists the immediate children of a directory key, sorted by name.
func (a *Archive) Children(dirKey string) ([]EntryInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.reader == nil {
		return nil, NewFSError(OpReadDir, dirKey, ErrNotOpen)
	}
	dir, ok := a.index[dirKey]
	if !ok {
		return nil, NewFSError(OpReadDir, dirKey, ErrEntryNotFound)
	}
	if !dir.IsDir {
		return nil, NewFSError(OpReadDir, dirKey, ErrNotDirectory)
	}

	var children []EntryInfo
	for key, info := range a.index {
		if key == dirKey || !strings.HasPrefix(key, dirKey) {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(key, dirKey), Separator)
		if rest == "" || strings.Contains(rest, Separator) {
			continue
		}
		children = append(children, info)
	}

	sort.Slice(children, func(i, j int) bool {
		if children[i].Name == children[j].Name {
			return children[i].IsDir
		}
		return children[i].Name < children[j].Name
	})
	archiveLogger.Trace("Directory %q has %d children", dirKey, len(children))
	return children, nil
}

// Close releases the container handle. Closing an already closed or never
// opened archive is a no-op.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reader == nil {
		archiveLogger.Trace("Close on closed container %s ignored", a.path)
		return nil
	}
	err := a.reader.Close()
	a.reader = nil
	a.files = nil
	if err != nil {
		return NewFSError(OpClose, a.path, err)
	}
	archiveLogger.Debug("Closed container %s", a.path)
	return nil
}
