// Package fs provides the container-backed virtual file system.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"virtualos/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrArchiveOpen indicates the container file is missing or malformed
	ErrArchiveOpen = errors.New("cannot open container")

	// ErrNotOpen indicates use of a container after Close
	ErrNotOpen = errors.New("container is not open")

	// ErrEntryNotFound indicates an entry key absent from the container index
	ErrEntryNotFound = errors.New("entry not found")

	// ErrFileNotFound indicates a virtual path that is not a file
	ErrFileNotFound = errors.New("file not found")

	// ErrNotDirectory indicates a virtual path that is not a directory
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory indicates an attempt to read a directory as a file
	ErrIsDirectory = errors.New("is a directory")

	// ErrReadOnly indicates attempt to modify the read-only container
	ErrReadOnly = errors.New("filesystem is read-only")
)

// Error wraps filesystem errors with context about the operation and
// affected path to provide more detailed error information.
type Error struct {
	Op   string // Operation that failed (e.g., "lookup", "read")
	Path string // Affected virtual path or entry key
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewFSError creates a new Error with the given operation, path, and underlying error
func NewFSError(op string, path string, err error) *Error {
	fsErr := &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
	errLogger.Debug("Created new FSError: %v", fsErr)
	return fsErr
}

// Common operation names for consistent logging and error reporting
const (
	OpOpen    = "open"    // Opening the container
	OpClose   = "close"   // Closing the container
	OpLookup  = "lookup"  // Looking up a path
	OpRead    = "read"    // Reading an entry
	OpReadDir = "readdir" // Listing a directory
)

// ToFuseError converts an error to the errno the kernel expects from a
// FUSE handler.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	errLogger.Trace("Converting error to FUSE error: %v", err)
	switch {
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrFileNotFound), errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ErrIsDirectory):
		return syscall.EISDIR
	case errors.Is(err, ErrReadOnly):
		return syscall.EROFS
	case errors.Is(err, ErrNotOpen):
		return syscall.EBADF
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}
