package scanner

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// stats tracks one root's walk progress using atomic counters for
// lock-free updates from every file worker, mirroring the teacher
// scanner's stats type.
type stats struct {
	filesScanned atomic.Int64
	filesMatched atomic.Int64
	bytesScanned atomic.Int64
	startTime    time.Time
}

func newStats() *stats {
	return &stats{startTime: time.Now()}
}

func (s *stats) String() string {
	return fmt.Sprintf("scanned %d files (%s), matched %d in %.1fs",
		s.filesScanned.Load(), humanize.IBytes(uint64(s.bytesScanned.Load())),
		s.filesMatched.Load(), time.Since(s.startTime).Seconds())
}
