package fs

import (
	"context"
	"sync"
	"syscall"

	"virtualos/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents a container file in the mounted view.
type File struct {
	fs   *VFS
	path VirtualPath
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	fileLogger.Trace("Getting attributes for file: %q", f.path.String())

	info, ok := f.fs.FileInfo(f.path)
	if !ok {
		fileLogger.Warn("File not found: %q", f.path.String())
		return syscall.ENOENT
	}

	a.Mode = 0444
	a.Size = info.Size
	a.Mtime = info.ModTime
	a.Atime = info.ModTime // We don't track access time
	a.Ctime = info.ModTime // We don't track creation time
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = blocks512(info.Size)

	fileLogger.Trace("File attributes: mode=%v, size=%d, mtime=%v",
		a.Mode, a.Size, a.Mtime)
	return nil
}

// Open implements the NodeOpener interface. The entry is decompressed
// once, up front; reads are then served from memory.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	fileLogger.Debug("Opening file %q with flags %v", f.path.String(), req.Flags)

	// Enforce read-only access
	if !req.Flags.IsReadOnly() {
		fileLogger.Warn("Attempted write access to read-only file: %q", f.path.String())
		return nil, syscall.EROFS
	}

	data, err := f.fs.ReadPath(f.path)
	if err != nil {
		fileLogger.Error("Failed to read file: %v", err)
		return nil, ToFuseError(err)
	}

	resp.Flags |= fuse.OpenKeepCache

	fileLogger.Debug("Successfully opened file %q", f.path.String())
	return &OpenFile{
		data: data,
		path: f.path.String(),
	}, nil
}

// OpenFile represents an open file handle holding the decompressed entry.
type OpenFile struct {
	data []byte
	path string // For logging purposes
	mu   sync.RWMutex
}

// Read implements the HandleReader interface, reading data from the entry.
func (fh *OpenFile) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	fileLogger.Trace("Reading %d bytes from file %q at offset %d",
		req.Size, fh.path, req.Offset)

	if fh.data == nil {
		return syscall.EBADF
	}
	if req.Offset >= int64(len(fh.data)) {
		resp.Data = nil
		return nil
	}
	end := req.Offset + int64(req.Size)
	if end > int64(len(fh.data)) {
		end = int64(len(fh.data))
	}
	resp.Data = fh.data[req.Offset:end]

	fileLogger.Trace("Successfully read %d bytes", len(resp.Data))
	return nil
}

// Release implements the HandleReleaser interface, dropping the buffer.
func (fh *OpenFile) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fileLogger.Debug("Closing file %q", fh.path)
	fh.data = nil
	return nil
}
