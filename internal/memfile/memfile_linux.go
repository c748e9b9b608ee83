//go:build linux

package memfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// Allocate creates the memory file and sizes it to totalSize before any
// writes happen. Flags deliberately omit MFD_CLOEXEC: the descriptor must
// survive process image replacement.
func Allocate(name string, totalSize int64) (*File, error) {
	fd, err := unix.MemfdCreate(name, 0)
	if err != nil {
		return nil, &AllocationError{Size: totalSize, Err: err}
	}
	if err := unix.Ftruncate(fd, totalSize); err != nil {
		unix.Close(fd)
		return nil, &AllocationError{Size: totalSize, Err: err}
	}
	return &File{
		f:    os.NewFile(uintptr(fd), name),
		fd:   fd,
		size: totalSize,
	}, nil
}
