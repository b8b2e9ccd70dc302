package fs

import (
	"os"
	"strconv"

	"virtualos/internal/logging"
)

var (
	vfsLogger = logging.GetLogger().WithPrefix("vfs")
)

// VFS represents the core virtual filesystem implementation.
// It resolves user paths against a current location and answers
// existence and read queries from the container index. Every shell
// command and the login gate go through it; nothing else touches the
// Archive directly.
//
// When the container stores both "x" and "x/", IsDirectory and List see
// the directory while IsFile and ReadFile see the file.
type VFS struct {
	archive *Archive
	uid     uint32 // User ID reported by the FUSE view
	gid     uint32 // Group ID reported by the FUSE view
}

// FileHandle is a resolved, existing file inside the container.
type FileHandle struct {
	Path VirtualPath
	Info EntryInfo
	vfs  *VFS
}

// ReadAll returns the file's full content.
func (fh *FileHandle) ReadAll() ([]byte, error) {
	return fh.vfs.archive.ReadAll(fh.Info.Key)
}

// Open creates a new virtual filesystem over the container at containerPath.
func Open(containerPath string) (*VFS, error) {
	vfsLogger.Info("Opening virtual filesystem")
	vfsLogger.Debug("Container: %s", containerPath)

	archive, err := OpenArchive(containerPath)
	if err != nil {
		return nil, err
	}

	// Get UID/GID from environment if set
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			vfsLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			vfsLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	vfsLogger.Info("Virtual filesystem opened successfully")
	return &VFS{archive: archive, uid: uid, gid: gid}, nil
}

// Close releases the container. It is safe to call more than once.
func (v *VFS) Close() error {
	vfsLogger.Debug("Closing virtual filesystem")
	return v.archive.Close()
}

// ContainerPath returns the physical container path.
func (v *VFS) ContainerPath() string {
	return v.archive.Path()
}

// FileInfo looks p up as a file.
func (v *VFS) FileInfo(p VirtualPath) (EntryInfo, bool) {
	if p.IsRoot() {
		return EntryInfo{}, false
	}
	info, ok := v.archive.Lookup(p.FileKey())
	if !ok || info.IsDir {
		return EntryInfo{}, false
	}
	return info, true
}

// DirInfo looks p up as a directory.
func (v *VFS) DirInfo(p VirtualPath) (EntryInfo, bool) {
	return v.archive.Lookup(p.DirKey())
}

// IsFile reports whether input, resolved against cwd, names a file.
func (v *VFS) IsFile(input string, cwd VirtualPath) bool {
	_, ok := v.FileInfo(Resolve(input, cwd))
	return ok
}

// IsDirectory reports whether input, resolved against cwd, names a directory.
func (v *VFS) IsDirectory(input string, cwd VirtualPath) bool {
	_, ok := v.DirInfo(Resolve(input, cwd))
	return ok
}

// GetFile resolves input and returns a handle if it names a file.
func (v *VFS) GetFile(input string, cwd VirtualPath) (*FileHandle, bool) {
	p := Resolve(input, cwd)
	info, ok := v.FileInfo(p)
	if !ok {
		vfsLogger.Debug("No file at %s", p)
		return nil, false
	}
	return &FileHandle{Path: p, Info: info, vfs: v}, true
}

// ReadPath returns the content of the file at p.
func (v *VFS) ReadPath(p VirtualPath) ([]byte, error) {
	if !v.archive.IsOpen() {
		return nil, NewFSError(OpRead, p.String(), ErrNotOpen)
	}
	info, ok := v.FileInfo(p)
	if !ok {
		return nil, NewFSError(OpRead, p.String(), ErrFileNotFound)
	}
	return v.archive.ReadAll(info.Key)
}

// ReadFile resolves input and returns the file's content as text.
// A missing file yields ErrFileNotFound.
func (v *VFS) ReadFile(input string, cwd VirtualPath) (string, error) {
	p := Resolve(input, cwd)
	vfsLogger.Debug("Reading file %s", p)
	data, err := v.ReadPath(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListPath returns the immediate children of the directory at p.
func (v *VFS) ListPath(p VirtualPath) ([]EntryInfo, error) {
	if !v.archive.IsOpen() {
		return nil, NewFSError(OpReadDir, p.String(), ErrNotOpen)
	}
	if _, ok := v.DirInfo(p); !ok {
		return nil, NewFSError(OpReadDir, p.String(), ErrNotDirectory)
	}
	return v.archive.Children(p.DirKey())
}

// List resolves input and lists the directory it names.
func (v *VFS) List(input string, cwd VirtualPath) ([]EntryInfo, error) {
	return v.ListPath(Resolve(input, cwd))
}
