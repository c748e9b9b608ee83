// Package memfile owns an anonymous memory-backed file sized to the object
// up front. Workers never see the whole file: each gets a Region capability
// restricted to its own byte range, so disjoint concurrent writes need no
// locking.
package memfile

import (
	"fmt"
	"os"
)

// AllocationError wraps failures to create or size the memory-backed file.
type AllocationError struct {
	Size int64
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("error allocating memory file of %d bytes: %v", e.Size, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// File is a kernel-backed anonymous file. The descriptor is created without
// close-on-exec so the path stays valid in a program launched by exec.
type File struct {
	f    *os.File
	fd   int
	size int64
}

func (m *File) Size() int64 {
	return m.size
}

// Path returns a reference another process (or this one after exec) can
// open to read the populated content.
func (m *File) Path() string {
	return fmt.Sprintf("/proc/self/fd/%d", m.fd)
}

// ReadAt implements io.ReaderAt over the full file.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	return m.f.ReadAt(p, off)
}

func (m *File) Close() error {
	return m.f.Close()
}

// Region returns a writer restricted to [start, end). Writes advance
// sequentially from start and fail once they would cross end. Callers must
// hand out disjoint regions; the file does not serialize writes to
// different ranges.
func (m *File) Region(start, end int64) *Region {
	return &Region{f: m.f, off: start, end: end}
}

type Region struct {
	f   *os.File
	off int64
	end int64
}

func (r *Region) Write(p []byte) (int, error) {
	if r.off+int64(len(p)) > r.end {
		return 0, fmt.Errorf("write of %d bytes exceeds region end %d", len(p), r.end)
	}
	n, err := r.f.WriteAt(p, r.off)
	r.off += int64(n)
	return n, err
}

// Remaining reports how many bytes the region can still accept.
func (r *Region) Remaining() int64 {
	return r.end - r.off
}
