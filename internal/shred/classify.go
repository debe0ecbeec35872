package shred

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileType is the classification of a target path
type FileType int

const (
	TypeFile FileType = iota
	TypeDir
	TypeSymlink
	TypeUnknown
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "directory"
	case TypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Exists reports whether the path is accessible at all (existence check,
// not a permission check)
func Exists(path string) bool {
	return unix.Access(path, unix.F_OK) == nil
}

// Classify resolves the filesystem type of a path. Lstat, not Stat:
// a symlink must classify as a symlink, never as its referent, or the
// engine would overwrite a file outside the target the caller named.
func Classify(path string) (FileType, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return TypeUnknown, err
	}

	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return TypeFile, nil
	case mode.IsDir():
		return TypeDir, nil
	case mode&os.ModeSymlink != 0:
		return TypeSymlink, nil
	default:
		return TypeUnknown, nil
	}
}
