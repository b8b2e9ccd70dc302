package fs

import (
	"context"
	"fmt"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

// Root implements the fusefs.FS interface, returning the root directory node.
func (v *VFS) Root() (fusefs.Node, error) {
	vfsLogger.Trace("Getting root directory node")
	return &Dir{
		fs:   v,
		path: Root,
	}, nil
}

// Mount exposes the container read-only at mountPoint and serves it until
// ctx is cancelled or the kernel drops the connection.
func Mount(ctx context.Context, v *VFS, mountPoint string) error {
	vfsLogger.Info("Mounting %s at %s", v.ContainerPath(), mountPoint)
	vfsLogger.Debug("UID: %d, GID: %d", v.uid, v.gid)

	c, err := fuse.Mount(mountPoint,
		fuse.FSName("vos"),
		fuse.Subtype("vos"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer c.Close()

	served := make(chan error, 1)
	go func() {
		vfsLogger.Info("Serving filesystem...")
		served <- fusefs.Serve(c, v)
	}()

	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("FUSE server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		vfsLogger.Info("Unmounting filesystem from: %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			vfsLogger.Error("Unmount failed: %v", err)
			return fmt.Errorf("unmount %s: %w", mountPoint, err)
		}
		if err := <-served; err != nil {
			return fmt.Errorf("FUSE server error: %w", err)
		}
		vfsLogger.Info("Unmount completed successfully")
		return nil
	}
}
