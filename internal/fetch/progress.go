package fetch

import (
	"sync/atomic"
	"time"

	"github.com/tanq16/memfetch/internal/utils"
)

// Tracker logs aggregate download progress on a fixed interval. Update is
// safe to call from the progress goroutine while the ticker reads.
type Tracker struct {
	totalSize  int64
	downloaded int64
	startTime  time.Time
	doneCh     chan struct{}
}

func NewTracker(totalSize int64) *Tracker {
	return &Tracker{
		totalSize: totalSize,
		startTime: time.Now(),
		doneCh:    make(chan struct{}),
	}
}

func (t *Tracker) Update(downloaded, total int64) {
	atomic.StoreInt64(&t.downloaded, downloaded)
}

func (t *Tracker) Start() {
	go func() {
		log := utils.GetLogger("progress")
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				downloaded := atomic.LoadInt64(&t.downloaded)
				elapsed := time.Since(t.startTime).Seconds()
				percent := float64(0)
				if t.totalSize > 0 {
					percent = float64(downloaded) / float64(t.totalSize) * 100
				}
				log.Info().Str("downloaded", utils.FormatBytes(uint64(downloaded))).
					Str("total", utils.FormatBytes(uint64(t.totalSize))).
					Str("speed", utils.FormatSpeed(downloaded, elapsed)).
					Msgf("download progress: %.1f%%", percent)
			case <-t.doneCh:
				return
			}
		}
	}()
}

// Stop ends the ticker and logs a final summary line.
func (t *Tracker) Stop() {
	close(t.doneCh)
	downloaded := atomic.LoadInt64(&t.downloaded)
	elapsed := time.Since(t.startTime).Seconds()
	log := utils.GetLogger("progress")
	log.Info().Str("size", utils.FormatBytes(uint64(downloaded))).
		Str("speed", utils.FormatSpeed(downloaded, elapsed)).
		Msgf("download finished in %.2fs", elapsed)
}
