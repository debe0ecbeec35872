package shred

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the target path does not exist
	ErrNotFound = errors.New("no such file or directory")

	// ErrNotRecursive indicates a directory target without recursive mode
	ErrNotRecursive = errors.New("path given is a directory")

	// ErrUnsupportedType indicates a target that is neither a regular file
	// nor a directory (sockets, devices, symlinks)
	ErrUnsupportedType = errors.New("unsupported file type")
)

// OpError is the diagnostic tuple (operation, path, cause) every failed
// target surfaces. Its string form is the one-line stderr contract:
// "op : path : cause".
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s : %s : %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op, path string, err error) *OpError {
	return &OpError{Op: op, Path: path, Err: err}
}
