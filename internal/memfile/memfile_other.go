//go:build !linux

package memfile

import "fmt"

func Allocate(name string, totalSize int64) (*File, error) {
	return nil, &AllocationError{
		Size: totalSize,
		Err:  fmt.Errorf("memfd_create is only available on linux"),
	}
}
