package sampler

import (
	"math"
	"time"

	"github.com/Dicklesworthstone/rktop/internal/source"
)

// CPULoadCalculator turns cumulative per-core jiffy counters into a load
// percentage over the interval since the previous observation.
type CPULoadCalculator struct {
	prev *Store[int, source.CoreTimes]
}

func NewCPULoadCalculator() *CPULoadCalculator {
	return &CPULoadCalculator{prev: NewStore[int, source.CoreTimes]()}
}

// Observe records cur for core at now and returns floor(100*(dTotal-dIdle)/dTotal).
// The first observation of a core and intervals where the total did not move
// yield 0 with ok=false. The result is not clamped.
func (c *CPULoadCalculator) Observe(now time.Time, core int, cur source.CoreTimes) (int, bool) {
	prev, _, seen := c.prev.Get(core)
	c.prev.Put(core, cur, now)
	if !seen {
		return 0, false
	}
	diffTotal := int64(cur.Total) - int64(prev.Total)
	diffIdle := int64(cur.Idle) - int64(prev.Idle)
	if diffTotal <= 0 {
		return 0, false
	}
	return int(math.Floor(100 * float64(diffTotal-diffIdle) / float64(diffTotal))), true
}
