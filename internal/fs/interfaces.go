package fs

import (
	fusefs "bazil.org/fuse/fs"
)

// ContainerDir is what the kernel may ask of a container directory. No
// mutating FUSE operation is implemented; the kernel answers those with
// EROFS/ENOSYS on its own.
type ContainerDir interface {
	fusefs.Node
	fusefs.NodeStringLookuper
	fusefs.HandleReadDirAller
}

// ContainerFile is a regular file inside the container.
type ContainerFile interface {
	fusefs.Node
	fusefs.NodeOpener
}

// ContainerHandle is an open, fully buffered container file.
type ContainerHandle interface {
	fusefs.Handle
	fusefs.HandleReader
	fusefs.HandleReleaser
}

var (
	_ fusefs.FS       = (*VFS)(nil)
	_ ContainerDir    = (*Dir)(nil)
	_ ContainerFile   = (*File)(nil)
	_ ContainerHandle = (*OpenFile)(nil)
)
