package durable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DirPerm is a permission mode of directories created by the package.
const DirPerm = 0o700

// Outcome describes what Bootstrap found at the requested path.
type Outcome uint8

const (
	// Created means the directory did not exist and was created, so the
	// caller is expected to initialize fresh metadata inside it.
	Created Outcome = iota

	// AlreadyExists means an existing directory was opened.
	AlreadyExists
)

func (o Outcome) String() string {
	switch o {
	default:
		return "UNDEFINED"
	case Created:
		return "CREATED"
	case AlreadyExists:
		return "ALREADY_EXISTS"
	}
}

// Dir is an open handle of a storage directory. It is shared by all files
// opened beneath it and must outlive them.
type Dir struct {
	fd   int
	path string
}

// Bootstrap creates or opens the storage root directory at path.
//
// If truncate is set, anything located at path is removed first; a failure to
// remove is not reported directly, but then the directory can not be created
// and Bootstrap fails. Without truncate an already existing directory is a
// normal case reported as AlreadyExists.
func Bootstrap(path string, truncate bool) (*Dir, Outcome, error) {
	if truncate {
		_ = os.RemoveAll(path)
	}

	outcome := Created

	err := unix.Mkdir(path, DirPerm)
	if err != nil {
		if truncate || !errors.Is(err, unix.EEXIST) {
			return nil, 0, fmt.Errorf("mkdir %q: %w", path, err)
		}
		outcome = AlreadyExists
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("open directory %q: %w", path, err)
	}

	return &Dir{fd: fd, path: path}, outcome, nil
}

// TouchDir creates a subdirectory with the given name inside root unless it
// already exists and opens it.
func TouchDir(name string, root *Dir) (*Dir, error) {
	err := unix.Mkdirat(root.fd, name, DirPerm)
	if err != nil && !errors.Is(err, unix.EEXIST) {
		return nil, fmt.Errorf("mkdir %q in %q: %w", name, root.path, err)
	}

	fd, err := unix.Openat(root.fd, name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open directory %q in %q: %w", name, root.path, err)
	}

	return &Dir{fd: fd, path: filepath.Join(root.path, name)}, nil
}

// FD returns the raw descriptor of the directory.
func (d *Dir) FD() int {
	return d.fd
}

// Path returns the path the directory was opened by.
func (d *Dir) Path() string {
	return d.path
}

// Close releases the directory descriptor.
func (d *Dir) Close() error {
	return unix.Close(d.fd)
}
