package planner

import "fmt"

const (
	mib = int64(1024 * 1024)
	gib = 1024 * mib
)

// Chunk is a half-open byte range [Start, End) of the source object.
type Chunk struct {
	ID    int
	Start int64
	End   int64
}

func (c Chunk) Len() int64 {
	return c.End - c.Start
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%d,%d)", c.Start, c.End)
}

// Plan partitions [0, TotalSize) into non-overlapping contiguous chunks and
// fixes the number of parallel workers used to fetch them.
type Plan struct {
	TotalSize   int64
	ChunkSize   int64
	Concurrency int
	Chunks      []Chunk
}

// policy returns the nominal chunk size and concurrency for a given object
// size. Small objects get few large requests, large objects get many
// moderate requests. Boundary sizes select the higher band.
func policy(totalSize int64) (int64, int) {
	switch {
	case totalSize < 64*mib:
		return 4 * mib, 4
	case totalSize < 512*mib:
		return 16 * mib, 8
	case totalSize < 2*gib:
		return 64 * mib, 12
	default:
		return 128 * mib, 16
	}
}

// New builds the default plan for an object of the given size. A zero-length
// object yields an empty chunk list; planning is deterministic for a given
// size.
func New(totalSize int64) Plan {
	chunkSize, concurrency := policy(totalSize)
	return build(totalSize, chunkSize, concurrency)
}

// NewWithPolicy builds a plan with an explicit chunk size and concurrency,
// for deployments that override the built-in size bands.
func NewWithPolicy(totalSize, chunkSize int64, concurrency int) Plan {
	return build(totalSize, chunkSize, concurrency)
}

func build(totalSize, chunkSize int64, concurrency int) Plan {
	plan := Plan{
		TotalSize:   totalSize,
		ChunkSize:   chunkSize,
		Concurrency: concurrency,
	}
	id := 0
	for start := int64(0); start < totalSize; start += chunkSize {
		end := min(start+chunkSize, totalSize)
		plan.Chunks = append(plan.Chunks, Chunk{ID: id, Start: start, End: end})
		id++
	}
	return plan
}
