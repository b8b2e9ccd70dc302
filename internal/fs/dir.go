package fs

import (
	"context"
	"os"
	"syscall"

	"virtualos/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a container directory in the mounted view.
type Dir struct {
	fs   *VFS
	path VirtualPath
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path.String())

	info, ok := d.fs.DirInfo(d.path)
	if !ok {
		dirLogger.Warn("Directory vanished from index: %q", d.path.String())
		return syscall.ENOENT
	}

	a.Mode = os.ModeDir | 0555
	a.Mtime = info.ModTime
	a.Atime = info.ModTime
	a.Ctime = info.ModTime
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
// A child stored both as file and directory resolves to the directory.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	dirLogger.Debug("Looking up %q in directory %q", name, d.path.String())
	childPath := d.path.Join(name)

	if _, ok := d.fs.DirInfo(childPath); ok {
		dirLogger.Debug("Found directory: %q", childPath.String())
		return &Dir{fs: d.fs, path: childPath}, nil
	}

	if _, ok := d.fs.FileInfo(childPath); ok {
		dirLogger.Debug("Found file: %q", childPath.String())
		return &File{fs: d.fs, path: childPath}, nil
	}

	dirLogger.Debug("Path not found: %q", childPath.String())
	return nil, syscall.ENOENT
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path.String())

	children, err := d.fs.ListPath(d.path)
	if err != nil {
		dirLogger.Error("Failed to list %q: %v", d.path.String(), err)
		return nil, ToFuseError(err)
	}

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}
	seen := make(map[string]bool, len(children))
	for _, child := range children {
		// directories sort first for equal names
		if seen[child.Name] {
			continue
		}
		seen[child.Name] = true
		dirent := fuse.Dirent{Name: child.Name, Type: fuse.DT_File}
		if child.IsDir {
			dirent.Type = fuse.DT_Dir
		}
		entries = append(entries, dirent)
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}
