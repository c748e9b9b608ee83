package fetch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/memfetch/internal/memfile"
	"github.com/tanq16/memfetch/internal/planner"
	"github.com/tanq16/memfetch/internal/storage"
	"github.com/tanq16/memfetch/internal/utils"
)

// Job carries everything one download needs: the object, its plan, the
// pre-sized memory file, and the backend capability.
type Job struct {
	ID           string
	Ref          storage.ObjectRef
	Size         int64
	Plan         planner.Plan
	MaxAttempts  int
	Store        storage.Store
	Mem          *memfile.File
	ProgressFunc func(downloaded, total int64)
}

// ChunkExhaustedError is terminal: one chunk ran out of attempts, so the
// whole job aborts rather than hand a partially populated file downstream.
type ChunkExhaustedError struct {
	Start    int64
	End      int64
	Attempts int
	Err      error
}

func (e *ChunkExhaustedError) Error() string {
	return fmt.Sprintf("chunk [%d,%d) failed after %d attempts: %v", e.Start, e.End, e.Attempts, e.Err)
}

func (e *ChunkExhaustedError) Unwrap() error {
	return e.Err
}

// Run downloads every chunk of the plan into the memory file using a worker
// pool bounded by the plan's concurrency. Chunks may complete in any order;
// Run returns nil only after every chunk has been written in full. The first
// exhausted chunk cancels all in-flight work.
func Run(ctx context.Context, job *Job) error {
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = utils.DefaultMaxAttempts
	}
	if job.Size == 0 || len(job.Plan.Chunks) == 0 {
		log.Info().Str("op", "fetch/run").Msgf("object %s is empty, nothing to download", job.Ref)
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan planner.Chunk, len(job.Plan.Chunks))
	for _, chunk := range job.Plan.Chunks {
		taskCh <- chunk
	}
	close(taskCh)

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, job.Size)
			}
		}
	}()

	numWorkers := min(job.Plan.Concurrency, len(job.Plan.Chunks))
	log.Info().Str("op", "fetch/run").Str("job", job.ID).Msgf("downloading %s (%s) in %d chunks with %d workers",
		job.Ref, utils.FormatBytes(uint64(job.Size)), len(job.Plan.Chunks), numWorkers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var runErr error
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buffer := make([]byte, utils.DefaultBufferSize)
			for chunk := range taskCh {
				if ctx.Err() != nil {
					return
				}
				if err := downloadChunk(ctx, job, chunk, buffer, progressCh); err != nil {
					mu.Lock()
					if runErr == nil {
						runErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
			}
		}()
	}
	wg.Wait()
	close(progressCh)
	<-progressDone

	if runErr != nil {
		return runErr
	}
	log.Info().Str("op", "fetch/run").Str("job", job.ID).Msgf("all %d chunks completed", len(job.Plan.Chunks))
	return nil
}

// downloadChunk fetches one chunk with local retries. Every attempt rewrites
// the chunk's region from its start, so a half-written attempt never leaks
// into the final content.
func downloadChunk(ctx context.Context, job *Job, chunk planner.Chunk, buffer []byte, progressCh chan<- int64) error {
	var lastErr error
	for attempt := range job.MaxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond): // Backoff
			}
		}
		written, err := fetchOnce(ctx, job, chunk, buffer, progressCh)
		if err == nil {
			log.Debug().Str("op", "fetch/chunk").Msgf("chunk %d %s completed", chunk.ID, chunk)
			return nil
		}
		if written > 0 {
			progressCh <- -written // Subtract from progress
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		log.Debug().Str("op", "fetch/chunk").Msgf("chunk %d attempt %d failed: %v", chunk.ID, attempt+1, err)
	}
	return &ChunkExhaustedError{Start: chunk.Start, End: chunk.End, Attempts: job.MaxAttempts, Err: lastErr}
}

func fetchOnce(ctx context.Context, job *Job, chunk planner.Chunk, buffer []byte, progressCh chan<- int64) (int64, error) {
	body, err := job.Store.GetRange(ctx, job.Ref, chunk.Start, chunk.End)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	region := job.Mem.Region(chunk.Start, chunk.End)
	var written int64
	for {
		n, err := body.Read(buffer)
		if n > 0 {
			if _, writeErr := region.Write(buffer[:n]); writeErr != nil {
				return written, writeErr
			}
			written += int64(n)
			progressCh <- int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}
	}
	// A short response is malformed, not a partial success
	if written != chunk.Len() {
		return written, fmt.Errorf("size mismatch: expected %d bytes, got %d", chunk.Len(), written)
	}
	return written, nil
}
