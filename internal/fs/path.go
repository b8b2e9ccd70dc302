package fs

import (
	"path"
	"strings"

	"virtualos/internal/logging"
)

// Separator is the virtual path separator. Entry keys use the same one.
const Separator = "/"

var (
	pathLogger = logging.GetLogger().WithPrefix("path")

	// Root is the canonical root of every container.
	Root = VirtualPath{}
)

// VirtualPath represents a path in the container's virtual tree.
// All paths are absolute, slash separated, and free of "." and ".."
// segments. The root is stored as the empty string so the zero value
// is the root and == compares canonical forms.
type VirtualPath struct {
	// always canonical; "" for the root, otherwise "/a/b"
	path string
}

// NewVirtualPath creates a new VirtualPath instance.
// It cleans the path and ensures it's absolute. A ".." that would climb
// above the root stays at the root.
func NewVirtualPath(p string) VirtualPath {
	cleaned := path.Clean(Separator + p)
	if cleaned == Separator {
		cleaned = ""
	}
	pathLogger.Trace("Creating new virtual path: %q -> %q", p, cleaned)
	return VirtualPath{path: cleaned}
}

// Resolve turns user input into a canonical absolute path. Input starting
// with the separator is absolute; anything else is relative to cwd.
func Resolve(input string, cwd VirtualPath) VirtualPath {
	if strings.HasPrefix(input, Separator) {
		return NewVirtualPath(input)
	}
	return NewVirtualPath(cwd.path + Separator + input)
}

// String returns the string representation of the path
func (vp VirtualPath) String() string {
	if vp.path == "" {
		return Separator
	}
	return vp.path
}

// IsRoot returns true if this is the root virtual path "/"
func (vp VirtualPath) IsRoot() bool {
	return vp.path == ""
}

// Parent returns a VirtualPath representing the parent directory.
// The root is its own parent.
func (vp VirtualPath) Parent() VirtualPath {
	if vp.IsRoot() {
		return vp
	}
	return NewVirtualPath(path.Dir(vp.path))
}

// Base returns the last element of the path, or "/" for the root.
func (vp VirtualPath) Base() string {
	if vp.IsRoot() {
		return Separator
	}
	return path.Base(vp.path)
}

// Join appends a single child name.
func (vp VirtualPath) Join(name string) VirtualPath {
	return NewVirtualPath(vp.path + Separator + name)
}

// Segments returns the path's components; the root has none.
func (vp VirtualPath) Segments() []string {
	if vp.IsRoot() {
		return nil
	}
	return strings.Split(vp.path[1:], Separator)
}

// FileKey is the entry key naming this path as a file: the path without
// its leading separator. The root has no file key and returns "".
func (vp VirtualPath) FileKey() string {
	return strings.TrimPrefix(vp.path, Separator)
}

// DirKey is the entry key naming this path as a directory: the file key
// plus a trailing separator. The root directory key is "".
func (vp VirtualPath) DirKey() string {
	if vp.IsRoot() {
		return ""
	}
	return vp.FileKey() + Separator
}

// EntryKey picks FileKey or DirKey.
func (vp VirtualPath) EntryKey(isDir bool) string {
	if isDir {
		return vp.DirKey()
	}
	return vp.FileKey()
}

// ParseEntryKey maps an entry key back to its virtual path and reports
// whether the key names a directory.
func ParseEntryKey(key string) (VirtualPath, bool) {
	isDir := key == "" || strings.HasSuffix(key, Separator)
	return NewVirtualPath(key), isDir
}

// normalizeKey turns a raw archive member name into an entry key.
// It returns false for names that cannot be addressed by a VirtualPath.
func normalizeKey(name string) (string, bool) {
	isDir := strings.HasSuffix(name, Separator)
	vp := NewVirtualPath(name)
	if vp.IsRoot() {
		return "", false
	}
	key := vp.EntryKey(isDir)
	if strings.TrimPrefix(strings.TrimPrefix(name, "./"), Separator) != key {
		pathLogger.Debug("Normalized archive member %q to %q", name, key)
	}
	return key, true
}
