package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

const mapPopulate = unix.MAP_POPULATE

// fdatasync skips the metadata (mtime/atime) that f.Sync would also flush.
func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
