package durable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	// FilePerm is a permission mode of files created by the package.
	FilePerm = 0o600

	// FileSuffix is appended to the hex identifier to get the file name.
	FileSuffix = ".fw"

	fileIDLen = 8
)

// File is a file identified by a 64-bit number inside a storage directory.
// It exclusively owns its descriptor until Close.
type File struct {
	fd  int
	fid uint64
}

// FileName returns the name of the file with the given identifier.
func FileName(fid uint64) string {
	return fmt.Sprintf("%08x%s", fid, FileSuffix)
}

// ParseFileName is the inverse of FileName. The second value is false if name
// was not produced by FileName.
func ParseFileName(name string) (uint64, bool) {
	s, ok := strings.CutSuffix(name, FileSuffix)
	if !ok || len(s) < fileIDLen || strings.ToLower(s) != s {
		return 0, false
	}
	// wider identifiers have no leading zeros
	if len(s) > fileIDLen && s[0] == '0' {
		return 0, false
	}

	fid, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}

	return fid, true
}

// OpenFile opens the file with the given identifier inside root for reading
// and writing. If the file does not exist, it is created and extended to
// minLen bytes without writing any data. Any other failure to open the file is
// returned as is.
func OpenFile(fid uint64, minLen uint64, root *Dir) (*File, error) {
	name := FileName(fid)

	fd, err := unix.Openat(root.fd, name, unix.O_RDWR|unix.O_CLOEXEC, FilePerm)
	if err != nil {
		if !errors.Is(err, unix.ENOENT) {
			return nil, err
		}

		fd, err = unix.Openat(root.fd, name, unix.O_RDWR|unix.O_CREAT|unix.O_CLOEXEC, FilePerm)
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", name, err)
		}

		err = unix.Ftruncate(fd, int64(minLen))
		if err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("truncate %q to %d: %w", name, minLen, err)
		}
	}

	return &File{fd: fd, fid: fid}, nil
}

// FD returns the raw descriptor for positioned reads and writes.
func (f *File) FD() int {
	return f.fd
}

// ID returns the file identifier.
func (f *File) ID() uint64 {
	return f.fid
}

// Name returns the file name inside the storage directory.
func (f *File) Name() string {
	return FileName(f.fid)
}

// Sync flushes all previously written data of the file to stable storage.
//
// Panics if fsync fails: nothing written after that point can be trusted.
func (f *File) Sync() {
	if err := unix.Fsync(f.fd); err != nil {
		panic(fmt.Errorf("fsync %s: %w", f.Name(), err))
	}
}

// Close releases the file descriptor.
func (f *File) Close() error {
	return unix.Close(f.fd)
}
