//go:build unix && !linux

package mmap

import "os"

const mapPopulate = 0

func fdatasync(f *os.File) error {
	return f.Sync()
}
